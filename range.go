package sheetdesk

import (
	"fmt"
	"strings"
)

// Sheet addresses one tab of the spreadsheet. Name is used in A1 ranges,
// TabID in structural requests such as row deletion; both must designate the
// same tab. Rows are only deleted from live sheets, so an archive Sheet may
// leave TabID unset and it is never read.
type Sheet struct {
	Name  string
	TabID int64
}

// Layout pairs the live sheet of a record kind with its archive sheet.
type Layout struct {
	Live    Sheet
	Archive Sheet
}

// headerRows is the number of rows above the data.
const headerRows = 1

// FirstDataRow is the row index of the first record.
const FirstDataRow = headerRows + 1

// ColumnName converts a column number to its letter form (1 -> A, 26 -> Z, 27 -> AA).
func ColumnName(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// QuoteSheetName quotes a sheet name for use in an A1 range when it contains
// anything other than letters, digits and underscores.
func QuoteSheetName(name string) string {
	plain := name != ""
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			plain = false
			break
		}
	}
	if plain {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// DataRange covers every data row of sheet for a record of columns cells,
// e.g. "Sheet1!A2:M".
func DataRange(sheet Sheet, columns int) string {
	return fmt.Sprintf("%s!A%d:%s", QuoteSheetName(sheet.Name), FirstDataRow, ColumnName(columns))
}

// RowRange covers a single row, e.g. "Sheet1!A5:M5".
func RowRange(sheet Sheet, row, columns int) string {
	return fmt.Sprintf("%s!A%d:%s%d", QuoteSheetName(sheet.Name), row, ColumnName(columns), row)
}

// AppendRange is the anchor used to append to sheet.
func AppendRange(sheet Sheet) string {
	return QuoteSheetName(sheet.Name) + "!A1"
}

// RangeSheet returns the unquoted sheet name of an A1 range.
func RangeSheet(rangeSpec string) string {
	// Quoted sheet names may themselves contain '!'
	idx := strings.LastIndex(rangeSpec, "!")
	if idx < 0 {
		return ""
	}
	name := rangeSpec[:idx]
	if len(name) >= 2 && strings.HasPrefix(name, "'") && strings.HasSuffix(name, "'") {
		name = strings.ReplaceAll(name[1:len(name)-1], "''", "'")
	}
	return name
}
