// Package backendtest checks that a sheetdesk.Backend behaves the way Table
// relies on. Adapter packages run it against their own backend.
package backendtest

import (
	"context"
	"testing"
	"time"

	sheetdesk "github.com/ideamans/go-sheetdesk"
)

// Case is a backend under test. The spreadsheet must hold an empty ticket
// sheet at Layout.Live and an empty archive sheet at Layout.Archive, each
// with a header row.
type Case struct {
	Name          string
	Backend       sheetdesk.Backend
	SpreadsheetID string
	Layout        sheetdesk.Layout
}

// NewCase returns a fresh case for one subtest.
type NewCase func(t *testing.T) Case

// Run exercises the row operations of the backend through a ticket table.
func Run(t *testing.T, newCase NewCase) {
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, newCase(t)) })
	t.Run("DeleteShiftsRows", func(t *testing.T) { testDeleteShiftsRows(t, newCase(t)) })
	t.Run("ArchiveMovesRow", func(t *testing.T) { testArchiveMovesRow(t, newCase(t)) })
	t.Run("UpdateBeyondData", func(t *testing.T) { testUpdateBeyondData(t, newCase(t)) })
}

// NewTable creates a ticket table on the case's backend with a short cache.
func NewTable(tc Case) *sheetdesk.Table[sheetdesk.Ticket] {
	client := sheetdesk.New(tc.Backend, &sheetdesk.Config{CacheTTL: time.Second})
	return sheetdesk.NewTicketTable(client, tc.SpreadsheetID, tc.Layout)
}

// Ticket returns a valid ticket for client.
func Ticket(client string) *sheetdesk.Ticket {
	return &sheetdesk.Ticket{
		Status:      sheetdesk.StatusTodo,
		TermsSigned: sheetdesk.Yes,
		Client:      client,
		Date:        time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		Phone:       "06.12.34.56.78",
		Details:     "Écran noir",
		Accepted:    sheetdesk.No,
		Notified:    sheetdesk.No,
	}
}

func createAll(t *testing.T, table *sheetdesk.Table[sheetdesk.Ticket], clients ...string) {
	t.Helper()
	for _, c := range clients {
		if err := table.Create(context.Background(), Ticket(c)); err != nil {
			t.Fatalf("Create(%s) error = %v", c, err)
		}
	}
}

func clientsOf(t *testing.T, rows []sheetdesk.Row) []string {
	t.Helper()
	out := make([]string, len(rows))
	for i, row := range rows {
		if len(row.Values) < 3 {
			t.Fatalf("row %d has %d cells", row.Index, len(row.Values))
		}
		out[i] = row.Values[2]
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func testRoundTrip(t *testing.T, tc Case) {
	ctx := context.Background()
	table := NewTable(tc)
	createAll(t, table, "Dupont")

	rows, err := table.Rows(ctx)
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Index != sheetdesk.FirstDataRow {
		t.Fatalf("Rows() = %v", rows)
	}

	got, err := table.Get(ctx, rows[0].Index)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := Ticket("Dupont")
	if got.Client != want.Client || !got.Date.Equal(want.Date) || got.Phone != want.Phone || got.Details != want.Details {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	// Trailing optional cells may be trimmed by the backend and still decode
	if got.Result != "" || got.Price != "" {
		t.Errorf("optional cells = %q, %q, want empty", got.Result, got.Price)
	}
}

func testDeleteShiftsRows(t *testing.T, tc Case) {
	ctx := context.Background()
	table := NewTable(tc)
	createAll(t, table, "A", "B", "C")

	if err := table.Delete(ctx, 3); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	rows, err := table.Rows(ctx)
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if got := clientsOf(t, rows); !equal(got, []string{"A", "C"}) {
		t.Errorf("clients = %v, want [A C]", got)
	}
	if rows[1].Index != 3 {
		t.Errorf("C moved to row %d, want 3", rows[1].Index)
	}
}

func testArchiveMovesRow(t *testing.T, tc Case) {
	ctx := context.Background()
	table := NewTable(tc)
	createAll(t, table, "A", "B")

	if err := table.Archive(ctx, 2); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	live, err := table.Rows(ctx)
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if got := clientsOf(t, live); !equal(got, []string{"B"}) {
		t.Errorf("live clients = %v, want [B]", got)
	}

	archived, err := table.ArchiveRows(ctx)
	if err != nil {
		t.Fatalf("ArchiveRows() error = %v", err)
	}
	if got := clientsOf(t, archived); !equal(got, []string{"A"}) {
		t.Errorf("archived clients = %v, want [A]", got)
	}
}

func testUpdateBeyondData(t *testing.T, tc Case) {
	ctx := context.Background()
	table := NewTable(tc)
	createAll(t, table, "A")

	if err := table.Update(ctx, 4, Ticket("D")); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	rows, err := table.Rows(ctx)
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if got := clientsOf(t, rows); !equal(got, []string{"A", "D"}) {
		t.Errorf("clients = %v, want [A D]", got)
	}
	if rows[1].Index != 4 {
		t.Errorf("D at row %d, want 4", rows[1].Index)
	}
}
