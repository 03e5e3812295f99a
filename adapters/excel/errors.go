package excel

import "errors"

var (
	// ErrMissingDir is returned when the workbook directory is not specified
	ErrMissingDir = errors.New("workbook directory is required")

	// ErrMissingSheetName is returned when a sheet spec has no name
	ErrMissingSheetName = errors.New("sheet name is required")

	// ErrSheetNotFound is returned when the addressed tab doesn't exist
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrInvalidRange is returned when an A1 range cannot be parsed
	ErrInvalidRange = errors.New("invalid range")
)
