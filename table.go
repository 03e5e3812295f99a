package sheetdesk

import (
	"context"
	"errors"
	"fmt"
)

// Row is a raw data row and the sheet row index it was read from.
type Row struct {
	Index  int
	Values []string
}

// CacheKeys names the cached lists of a table.
type CacheKeys struct {
	Live    string
	Archive string
}

// Table maps one record kind onto its live and archive sheets.
//
// Records are identified by row index. Delete and Archive shift every row
// below the affected one, so indices obtained before either call are invalid
// afterwards. Concurrent writers are not coordinated.
//
// Table owns cache invalidation: every mutation drops the lists whose sheets
// it touched, including when the backend call failed part-way.
type Table[R any] struct {
	client        *Client
	spreadsheetID string
	schema        Schema[R]
	layout        Layout
	keys          CacheKeys
}

// NewTable binds schema to the sheets of layout in spreadsheetID.
func NewTable[R any](client *Client, spreadsheetID string, schema Schema[R], layout Layout, keys CacheKeys) *Table[R] {
	return &Table[R]{
		client:        client,
		spreadsheetID: spreadsheetID,
		schema:        schema,
		layout:        layout,
		keys:          keys,
	}
}

// Schema returns the column contract of the table.
func (t *Table[R]) Schema() Schema[R] {
	return t.schema
}

// Layout returns the sheets of the table.
func (t *Table[R]) Layout() Layout {
	return t.layout
}

// Rows returns the data rows of the live sheet, served from the cache.
func (t *Table[R]) Rows(ctx context.Context) ([]Row, error) {
	return t.list(ctx, t.layout.Live, t.keys.Live)
}

// ArchiveRows returns the data rows of the archive sheet, served from the cache.
func (t *Table[R]) ArchiveRows(ctx context.Context) ([]Row, error) {
	return t.list(ctx, t.layout.Archive, t.keys.Archive)
}

func (t *Table[R]) list(ctx context.Context, sheet Sheet, key string) ([]Row, error) {
	rangeSpec := DataRange(sheet, t.schema.Columns())
	values, err := t.client.cache.Get(ctx, key, func(ctx context.Context) ([][]string, error) {
		return t.client.ReadRange(ctx, t.spreadsheetID, rangeSpec)
	})
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(values))
	for i, v := range values {
		if len(v) == 0 {
			continue
		}
		rows = append(rows, Row{Index: FirstDataRow + i, Values: v})
	}
	return rows, nil
}

// Get reads and decodes the record at rowIndex of the live sheet.
func (t *Table[R]) Get(ctx context.Context, rowIndex int) (*R, error) {
	if err := checkDataRow(rowIndex); err != nil {
		return nil, err
	}
	values, err := t.client.ReadRange(ctx, t.spreadsheetID, RowRange(t.layout.Live, rowIndex, t.schema.Columns()))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, fmt.Errorf("row %d: %w", rowIndex, ErrRowNotFound)
	}
	return t.schema.Decode(values[0], t.client.dateFormat)
}

// Create appends r to the live sheet.
func (t *Table[R]) Create(ctx context.Context, r *R) error {
	return t.AppendTo(ctx, AppendRange(t.layout.Live), r)
}

// AppendTo validates r and appends it at the first free row of rangeSpec.
// Invalid records never reach the backend.
func (t *Table[R]) AppendTo(ctx context.Context, rangeSpec string, r *R) error {
	row, err := t.schema.Encode(r, t.client.dateFormat)
	if err != nil {
		return err
	}
	defer t.invalidateRange(rangeSpec)
	return t.client.AppendRow(ctx, t.spreadsheetID, rangeSpec, row)
}

// Update overwrites the live row at rowIndex with r. The row is not checked
// for existence: an index past the data extends the sheet.
func (t *Table[R]) Update(ctx context.Context, rowIndex int, r *R) error {
	if err := checkDataRow(rowIndex); err != nil {
		return err
	}
	row, err := t.schema.Encode(r, t.client.dateFormat)
	if err != nil {
		return err
	}
	defer t.client.cache.Invalidate(t.keys.Live)
	return t.client.UpdateRow(ctx, t.spreadsheetID, RowRange(t.layout.Live, rowIndex, t.schema.Columns()), row)
}

// Delete removes the live row at rowIndex. Row indices of the live sheet read
// before the call are stale afterwards.
func (t *Table[R]) Delete(ctx context.Context, rowIndex int) error {
	if err := checkDataRow(rowIndex); err != nil {
		return err
	}
	defer t.client.cache.Invalidate(t.keys.Live)
	return t.client.DeleteRow(ctx, t.spreadsheetID, rowIndex, t.layout.Live.TabID)
}

// Archive moves the live row at rowIndex to the archive sheet: the row is read
// and decoded, appended to the archive, then deleted from the live sheet.
// Nothing is deleted unless the append succeeded. A failed delete leaves the
// record in both sheets and is reported as an *ArchiveError whose Duplicated
// method returns true. Live row indices read before the call are stale.
func (t *Table[R]) Archive(ctx context.Context, rowIndex int) error {
	if err := checkDataRow(rowIndex); err != nil {
		return err
	}

	rec, err := t.Get(ctx, rowIndex)
	if err != nil {
		return &ArchiveError{Row: rowIndex, Stage: StageRead, Err: err}
	}
	row, err := t.schema.Encode(rec, t.client.dateFormat)
	if err != nil {
		return &ArchiveError{Row: rowIndex, Stage: StageRead, Err: err}
	}

	defer t.client.cache.Invalidate(t.keys.Live, t.keys.Archive)

	if err := t.client.AppendRow(ctx, t.spreadsheetID, AppendRange(t.layout.Archive), row); err != nil {
		return &ArchiveError{Row: rowIndex, Stage: StageAppend, Err: err}
	}
	if err := t.client.DeleteRow(ctx, t.spreadsheetID, rowIndex, t.layout.Live.TabID); err != nil {
		t.client.logger.Error("archived record left in live sheet",
			"sheet", t.layout.Live.Name, "row", rowIndex, "archive", t.layout.Archive.Name, "error", err)
		return &ArchiveError{Row: rowIndex, Stage: StageDelete, Err: err}
	}

	t.client.logger.Info("archived record", "sheet", t.layout.Live.Name, "row", rowIndex, "archive", t.layout.Archive.Name)
	return nil
}

// invalidateRange drops the cached lists of the sheet rangeSpec points at.
func (t *Table[R]) invalidateRange(rangeSpec string) {
	switch RangeSheet(rangeSpec) {
	case t.layout.Live.Name:
		t.client.cache.Invalidate(t.keys.Live)
	case t.layout.Archive.Name:
		t.client.cache.Invalidate(t.keys.Archive)
	default:
		t.client.cache.Invalidate(t.keys.Live, t.keys.Archive)
	}
}

func checkDataRow(rowIndex int) error {
	if rowIndex < FirstDataRow {
		return &ValidationError{Field: "row", Reason: fmt.Sprintf("row index %d is not a data row", rowIndex)}
	}
	return nil
}

// IsNotFound reports whether err means the addressed row holds no record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRowNotFound)
}
