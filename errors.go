package sheetdesk

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrDateParse   = errors.New("invalid date")
	ErrBackend     = errors.New("backend failure")
	ErrRowNotFound = errors.New("row not found")
)

// ValidationError reports malformed or incomplete input detected before any
// backend call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DateParseError reports a date string that does not match the accepted layout.
type DateParseError struct {
	Field  string
	Value  string
	Layout string
	Err    error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid date in %s: %q does not match %q", e.Field, e.Value, e.Layout)
}

func (e *DateParseError) Unwrap() error { return e.Err }

func (e *DateParseError) Is(target error) bool { return target == ErrDateParse }

// BackendError wraps any transport, auth or remote failure of the spreadsheet backend.
type BackendError struct {
	Op    string
	Range string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Range, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

func (e *BackendError) Is(target error) bool { return target == ErrBackend }

// ArchiveStage names the step of an archive that failed.
type ArchiveStage string

const (
	StageRead   ArchiveStage = "read"
	StageAppend ArchiveStage = "append"
	StageDelete ArchiveStage = "delete"
)

// ArchiveError reports a failed archive. When Stage is StageDelete the record
// was already appended to the archive sheet and now exists in both places.
type ArchiveError struct {
	Row   int
	Stage ArchiveStage
	Err   error
}

func (e *ArchiveError) Error() string {
	if e.Stage == StageDelete {
		return fmt.Sprintf("archive row %d: archived copy written but origin row not deleted: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("archive row %d: %s failed: %v", e.Row, e.Stage, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// Duplicated reports whether the record is left in both the live and archive sheets.
func (e *ArchiveError) Duplicated() bool { return e.Stage == StageDelete }
