package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	sheetdesk "github.com/ideamans/go-sheetdesk"
	"github.com/xuri/excelize/v2"
)

var _ sheetdesk.Backend = (*Adapter)(nil)

// Adapter implements sheetdesk.Backend on local Excel workbooks. A spreadsheet
// id names the file <Dir>/<id>.xlsx and a tab id is the sheet position.
type Adapter struct {
	config *Config
	mu     sync.RWMutex
}

// New creates a new Excel adapter with the given configuration
func New(config *Config) (*Adapter, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create a copy of config to avoid external modifications
	configCopy := *config
	configCopy.Sheets = append([]SheetSpec(nil), config.Sheets...)

	return &Adapter{
		config: &configCopy,
	}, nil
}

// Path returns the workbook file of spreadsheetID.
func (a *Adapter) Path(spreadsheetID string) string {
	return filepath.Join(a.config.Dir, spreadsheetID+".xlsx")
}

// GetValues returns the cells of rangeSpec with trailing empty cells and rows
// trimmed. A missing workbook or sheet reads as empty.
func (a *Adapter) GetValues(ctx context.Context, spreadsheetID, rangeSpec string) ([][]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng, err := parseRange(rangeSpec)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(a.Path(spreadsheetID))
	if err != nil {
		if os.IsNotExist(err) {
			return [][]string{}, nil
		}
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetIndex, err := f.GetSheetIndex(rng.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet index: %w", err)
	}
	if sheetIndex == -1 {
		return [][]string{}, nil
	}

	rows, err := f.GetRows(rng.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	lastRow := len(rows)
	if rng.endRow > 0 && rng.endRow < lastRow {
		lastRow = rng.endRow
	}

	values := make([][]string, 0)
	for r := rng.startRow; r <= lastRow; r++ {
		values = append(values, rng.clip(rows[r-1]))
	}

	// Trailing empty rows are not part of the range's data
	for len(values) > 0 && len(values[len(values)-1]) == 0 {
		values = values[:len(values)-1]
	}
	return values, nil
}

// AppendValues writes rows below the last populated row of the range's sheet.
func (a *Adapter) AppendValues(ctx context.Context, spreadsheetID, rangeSpec string, rows [][]string) error {
	rng, err := parseRange(rangeSpec)
	if err != nil {
		return err
	}

	return a.modify(ctx, spreadsheetID, func(f *excelize.File) error {
		if err := a.ensureSheet(f, rng.sheet); err != nil {
			return err
		}
		existing, err := f.GetRows(rng.sheet)
		if err != nil {
			return fmt.Errorf("failed to get rows: %w", err)
		}
		next := len(existing) + 1
		if next < rng.startRow {
			next = rng.startRow
		}
		return writeRows(f, rng.sheet, rng.startCol, next, rows)
	})
}

// UpdateValues overwrites cells starting at the range's top left cell. Rows
// past the data extend the sheet.
func (a *Adapter) UpdateValues(ctx context.Context, spreadsheetID, rangeSpec string, rows [][]string) error {
	rng, err := parseRange(rangeSpec)
	if err != nil {
		return err
	}

	return a.modify(ctx, spreadsheetID, func(f *excelize.File) error {
		if err := a.ensureSheet(f, rng.sheet); err != nil {
			return err
		}
		return writeRows(f, rng.sheet, rng.startCol, rng.startRow, rows)
	})
}

// DeleteRows removes rows [startIndex, endIndex) of the sheet at position tabID.
func (a *Adapter) DeleteRows(ctx context.Context, spreadsheetID string, tabID int64, startIndex, endIndex int64) error {
	if startIndex < 0 || endIndex <= startIndex {
		return fmt.Errorf("%w: rows [%d, %d)", ErrInvalidRange, startIndex, endIndex)
	}

	return a.modify(ctx, spreadsheetID, func(f *excelize.File) error {
		sheet := f.GetSheetName(int(tabID))
		if sheet == "" {
			return fmt.Errorf("%w: tab %d", ErrSheetNotFound, tabID)
		}
		// Remove bottom-up so the remaining bounds stay valid
		for row := endIndex; row > startIndex; row-- {
			if err := f.RemoveRow(sheet, int(row)); err != nil {
				return fmt.Errorf("failed to remove row %d: %w", row, err)
			}
		}
		return nil
	})
}

// modify opens or creates the workbook, applies fn and saves it.
func (a *Adapter) modify(ctx context.Context, spreadsheetID string, fn func(f *excelize.File) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	path := a.Path(spreadsheetID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var f *excelize.File
	if _, err := os.Stat(path); err == nil {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return fmt.Errorf("failed to open Excel file: %w", err)
		}
	} else {
		f, err = a.newWorkbook()
		if err != nil {
			return err
		}
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// newWorkbook creates a workbook holding the configured sheets in tab order.
func (a *Adapter) newWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)

	for i, spec := range a.config.Sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, spec.Name); err != nil {
				return nil, fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(spec.Name); err != nil {
			return nil, fmt.Errorf("failed to create sheet: %w", err)
		}
		if len(spec.Header) > 0 {
			if err := writeRows(f, spec.Name, 1, 1, [][]string{spec.Header}); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

func (a *Adapter) ensureSheet(f *excelize.File, sheet string) error {
	index, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("failed to get sheet index: %w", err)
	}
	if index != -1 {
		return nil
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	for _, spec := range a.config.Sheets {
		if spec.Name == sheet && len(spec.Header) > 0 {
			return writeRows(f, sheet, 1, 1, [][]string{spec.Header})
		}
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, col, row int, rows [][]string) error {
	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(col, row+i)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRange, err)
		}
		cells := make([]interface{}, len(values))
		for j, v := range values {
			cells[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row+i, err)
		}
	}
	return nil
}

// cellRange is a parsed A1 range. Zero end bounds are open.
type cellRange struct {
	sheet    string
	startCol int
	startRow int
	endCol   int
	endRow   int
}

// clip returns the cells of row within the range's columns, trailing empty cells trimmed.
func (r cellRange) clip(row []string) []string {
	start := r.startCol - 1
	end := len(row)
	if r.endCol > 0 && r.endCol < end {
		end = r.endCol
	}
	if start >= end {
		return []string{}
	}
	cells := append([]string{}, row[start:end]...)
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

// parseRange parses ranges such as "Sheet1!A2:M", "'My sheet'!A5:M5", "Archive!A1" or "Sheet1!A:ZZ".
func parseRange(rangeSpec string) (cellRange, error) {
	sheet := sheetdesk.RangeSheet(rangeSpec)
	idx := strings.LastIndex(rangeSpec, "!")
	if sheet == "" || idx < 0 {
		return cellRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, rangeSpec)
	}

	start, end, hasEnd := strings.Cut(rangeSpec[idx+1:], ":")
	rng := cellRange{sheet: sheet}

	var err error
	rng.startCol, rng.startRow, err = parseCell(start)
	if err != nil || rng.startCol == 0 {
		return cellRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, rangeSpec)
	}
	if rng.startRow == 0 {
		rng.startRow = 1
	}

	if !hasEnd {
		rng.endCol, rng.endRow = rng.startCol, rng.startRow
		return rng, nil
	}
	rng.endCol, rng.endRow, err = parseCell(end)
	if err != nil {
		return cellRange{}, fmt.Errorf("%w: %q", ErrInvalidRange, rangeSpec)
	}
	return rng, nil
}

// parseCell splits "M5" into column 13 and row 5; either part may be absent.
func parseCell(cell string) (col, row int, err error) {
	split := strings.IndexFunc(cell, func(r rune) bool { return r >= '0' && r <= '9' })
	letters, digits := cell, ""
	if split >= 0 {
		letters, digits = cell[:split], cell[split:]
	}
	if letters != "" {
		if col, err = excelize.ColumnNameToNumber(letters); err != nil {
			return 0, 0, err
		}
	}
	if digits != "" {
		if row, err = strconv.Atoi(digits); err != nil || row < 1 {
			return 0, 0, fmt.Errorf("invalid row %q", digits)
		}
	}
	return col, row, nil
}
