package excel

import (
	"time"

	sheetdesk "github.com/ideamans/go-sheetdesk"
)

// SheetSpec describes a sheet created with a new workbook.
type SheetSpec struct {
	Name   string   // Sheet name
	Header []string // Written to row 1 when the sheet is created
}

// Config holds configuration for Excel adapter
type Config struct {
	Dir    string      // Directory holding one <spreadsheet id>.xlsx per spreadsheet
	Sheets []SheetSpec // Sheets of a new workbook, in tab order
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Dir == "" {
		return ErrMissingDir
	}
	for _, s := range c.Sheets {
		if s.Name == "" {
			return ErrMissingSheetName
		}
	}
	return nil
}

// DefaultClientConfig returns the recommended client configuration for Excel.
// Local reads are cheap, so lists are cached briefly.
func DefaultClientConfig() *sheetdesk.Config {
	return &sheetdesk.Config{
		DateFormat: sheetdesk.DefaultDateFormat(),
		CacheTTL:   5 * time.Second,
	}
}
