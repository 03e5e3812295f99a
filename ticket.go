package sheetdesk

import "time"

// Ticket statuses, in display order.
const (
	StatusTodo       = "1-A faire"
	StatusInProgress = "2-En cours"
	StatusReady      = "3-Prêt pour livraison"
	StatusDone       = "4-Terminé"
	StatusOnHold     = "5-En attente"
	StatusUrgent     = "6-URGENT"
	StatusDispute    = "7-Litige"
)

// TicketStatuses lists the accepted statuses.
var TicketStatuses = []string{
	StatusTodo,
	StatusInProgress,
	StatusReady,
	StatusDone,
	StatusOnHold,
	StatusUrgent,
	StatusDispute,
}

// Yes/no cell values.
const (
	Yes = "O"
	No  = "N"
)

// Ticket is a repair ticket stored in 13 columns (A..M).
type Ticket struct {
	Status      string
	TermsSigned string // CGV / décharge signed, O or N
	Client      string
	Date        time.Time
	Technician  string
	Phone       string
	Details     string
	Equipment   string
	Services    string
	Accepted    string
	Result      string
	Price       string
	Notified    string
}

// TicketSchema is the column order of the ticket sheets.
var TicketSchema = NewSchema(
	StringField("statut", true, func(t *Ticket) *string { return &t.Status }),
	StringField("cgv_dech", true, func(t *Ticket) *string { return &t.TermsSigned }),
	StringField("client", true, func(t *Ticket) *string { return &t.Client }),
	DateField("date_jour", true, func(t *Ticket) *time.Time { return &t.Date }),
	StringField("tech", false, func(t *Ticket) *string { return &t.Technician }),
	StringField("numero_client", true, func(t *Ticket) *string { return &t.Phone }),
	StringField("details", false, func(t *Ticket) *string { return &t.Details }),
	StringField("materiel", false, func(t *Ticket) *string { return &t.Equipment }),
	StringField("prestations", false, func(t *Ticket) *string { return &t.Services }),
	StringField("accepte", true, func(t *Ticket) *string { return &t.Accepted }),
	StringField("resultat", false, func(t *Ticket) *string { return &t.Result }),
	StringField("tarif", false, func(t *Ticket) *string { return &t.Price }),
	StringField("prevenu", true, func(t *Ticket) *string { return &t.Notified }),
)

// DefaultTicketLayout is where tickets live in the shared spreadsheet.
var DefaultTicketLayout = Layout{
	Live:    Sheet{Name: "Sheet1", TabID: 0},
	Archive: Sheet{Name: "Archive"}, // appended to only; TabID unused
}

// TicketCacheKeys are the list cache keys of the ticket table.
var TicketCacheKeys = CacheKeys{Live: "tickets_list", Archive: "archive_tickets_list"}

// NewTicketTable returns the ticket table of a spreadsheet.
func NewTicketTable(client *Client, spreadsheetID string, layout Layout) *Table[Ticket] {
	return NewTable(client, spreadsheetID, TicketSchema, layout, TicketCacheKeys)
}
