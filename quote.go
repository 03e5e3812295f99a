package sheetdesk

import "time"

// Quote is a quotation line stored in 9 columns (A..I). Amounts are kept as
// entered.
type Quote struct {
	Client      string
	Date        time.Time
	Description string
	Quantity    string
	Unit        string
	UnitPriceHT string
	TotalHT     string
	VAT         string
	TotalTTC    string
}

// QuoteSchema is the column order of the quote sheets.
var QuoteSchema = NewSchema(
	StringField("client", true, func(q *Quote) *string { return &q.Client }),
	DateField("date_jour", true, func(q *Quote) *time.Time { return &q.Date }),
	StringField("description", false, func(q *Quote) *string { return &q.Description }),
	StringField("quantite", false, func(q *Quote) *string { return &q.Quantity }),
	StringField("unite", false, func(q *Quote) *string { return &q.Unit }),
	StringField("prix_unit_ht", false, func(q *Quote) *string { return &q.UnitPriceHT }),
	StringField("total_ht", false, func(q *Quote) *string { return &q.TotalHT }),
	StringField("tva", false, func(q *Quote) *string { return &q.VAT }),
	StringField("ttc", false, func(q *Quote) *string { return &q.TotalTTC }),
)

// DefaultQuoteLayout is where quotes live in the shared spreadsheet.
var DefaultQuoteLayout = Layout{
	Live:    Sheet{Name: "Sheet2", TabID: 1},
	Archive: Sheet{Name: "Archive2"}, // appended to only; TabID unused
}

// QuoteCacheKeys are the list cache keys of the quote table.
var QuoteCacheKeys = CacheKeys{Live: "quotes_list", Archive: "archive_quotes_list"}

// NewQuoteTable returns the quote table of a spreadsheet.
func NewQuoteTable(client *Client, spreadsheetID string, layout Layout) *Table[Quote] {
	return NewTable(client, spreadsheetID, QuoteSchema, layout, QuoteCacheKeys)
}
