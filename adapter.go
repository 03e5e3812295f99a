package sheetdesk

import "context"

// Backend is a remote tabular store addressed by spreadsheet id, sheet name
// and A1 range. Implementations live under adapters/.
type Backend interface {
	// GetValues returns the rows of rangeSpec. Trailing empty cells and rows
	// may be omitted. An empty range yields an empty slice.
	GetValues(ctx context.Context, spreadsheetID, rangeSpec string) ([][]string, error)

	// AppendValues writes rows after the last populated row of rangeSpec's table.
	AppendValues(ctx context.Context, spreadsheetID, rangeSpec string, rows [][]string) error

	// UpdateValues overwrites the cells starting at rangeSpec's top left cell.
	UpdateValues(ctx context.Context, spreadsheetID, rangeSpec string, rows [][]string) error

	// DeleteRows removes rows [startIndex, endIndex) (0-based) from the tab
	// identified by tabID. Rows below shift up.
	DeleteRows(ctx context.Context, spreadsheetID string, tabID int64, startIndex, endIndex int64) error
}
