package googlesheets

import (
	"time"

	sheetdesk "github.com/ideamans/go-sheetdesk"
)

// Config represents configuration specific to Google Sheets adapter
type Config struct {
	ApplicationName string // Sent as the user agent when set
}

// DefaultClientConfig returns the recommended client configuration for Google Sheets
func DefaultClientConfig() *sheetdesk.Config {
	return &sheetdesk.Config{
		DateFormat: sheetdesk.DefaultDateFormat(),
		CacheTTL:   1 * time.Hour,
	}
}
