package googlesheets

import (
	"context"
	"fmt"
	"strconv"

	sheetdesk "github.com/ideamans/go-sheetdesk"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var _ sheetdesk.Backend = (*SheetsAdaptor)(nil)

const (
	valueInputRaw  = "RAW"
	insertRows     = "INSERT_ROWS"
	dimensionRows  = "ROWS"
	formattedValue = "FORMATTED_VALUE"
)

// SheetsAdaptor implements sheetdesk.Backend for Google Sheets
type SheetsAdaptor struct {
	service *sheets.Service
}

// NewSheetsAdaptor creates a new Google Sheets adaptor with provided options
func NewSheetsAdaptor(ctx context.Context, config Config, opts ...option.ClientOption) (*SheetsAdaptor, error) {
	if config.ApplicationName != "" {
		opts = append(opts, option.WithUserAgent(config.ApplicationName))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsAdaptor{service: service}, nil
}

// GetValues returns the formatted cell values of rangeSpec
func (a *SheetsAdaptor) GetValues(ctx context.Context, spreadsheetID, rangeSpec string) ([][]string, error) {
	resp, err := a.service.Spreadsheets.Values.Get(spreadsheetID, rangeSpec).
		ValueRenderOption(formattedValue).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet data: %w", err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = convertCellValue(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

// AppendValues inserts rows after the table found at rangeSpec
func (a *SheetsAdaptor) AppendValues(ctx context.Context, spreadsheetID, rangeSpec string, rows [][]string) error {
	vr := &sheets.ValueRange{Values: toSheetValues(rows)}
	_, err := a.service.Spreadsheets.Values.Append(spreadsheetID, rangeSpec, vr).
		ValueInputOption(valueInputRaw).
		InsertDataOption(insertRows).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to sheet: %w", err)
	}
	return nil
}

// UpdateValues overwrites the cells of rangeSpec
func (a *SheetsAdaptor) UpdateValues(ctx context.Context, spreadsheetID, rangeSpec string, rows [][]string) error {
	vr := &sheets.ValueRange{Values: toSheetValues(rows)}
	_, err := a.service.Spreadsheets.Values.Update(spreadsheetID, rangeSpec, vr).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update sheet: %w", err)
	}
	return nil
}

// DeleteRows removes rows [startIndex, endIndex) of the tab tabID
func (a *SheetsAdaptor) DeleteRows(ctx context.Context, spreadsheetID string, tabID int64, startIndex, endIndex int64) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				DeleteDimension: &sheets.DeleteDimensionRequest{
					Range: &sheets.DimensionRange{
						SheetId:    tabID,
						Dimension:  dimensionRows,
						StartIndex: startIndex,
						EndIndex:   endIndex,
						// Zero is a valid tab id and row index.
						ForceSendFields: []string{"SheetId", "StartIndex"},
					},
				},
			},
		},
	}
	_, err := a.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete rows: %w", err)
	}
	return nil
}

// convertCellValue converts a Google Sheets cell value to its string form
func convertCellValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprintf("%v", val)
	}
}

func toSheetValues(rows [][]string) [][]interface{} {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		values[i] = cells
	}
	return values
}
