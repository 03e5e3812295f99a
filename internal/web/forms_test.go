package web

import (
	"net/http"
	"strings"
	"unicode/utf8"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	sheetdesk "github.com/ideamans/go-sheetdesk"
)

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0612345678", "06.12.34.56.78"},
		{"06 12 34 56 78", "06.12.34.56.78"},
		{"06.12.34.56.78", "06.12.34.56.78"},
		{"061234567899", "06.12.34.56.78"},
		{"061", "06.1"},
		{"+33 6", "33.6"},
		{"", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FormatPhone(tt.in), "FormatPhone(%q)", tt.in)
	}
}

func TestFieldsFollowSchema(t *testing.T) {
	names := func(fields []formField) []string {
		out := make([]string, len(fields))
		for i, f := range fields {
			out[i] = f.Name
		}
		return out
	}
	require.Equal(t, sheetdesk.TicketSchema.Names(), names(ticketFields))
	require.Equal(t, sheetdesk.QuoteSchema.Names(), names(quoteFields))

	for i, f := range sheetdesk.TicketSchema.Fields {
		require.Equal(t, f.Required, ticketFields[i].Required, f.Name)
	}
	for i, f := range sheetdesk.QuoteSchema.Fields {
		require.Equal(t, f.Required, quoteFields[i].Required, f.Name)
	}
}

func TestParseRecord(t *testing.T) {
	form := url.Values{
		"client":       {"  Martin "},
		"date_jour":    {"2024-02-01"},
		"quantite":     {"2"},
		"prix_unit_ht": {"12,5"},
	}
	rec, view := parseRecord(sheetdesk.QuoteSchema, quoteFields, "/quotes/new", form)
	require.NotNil(t, rec)
	require.True(t, view.Valid())
	require.Equal(t, "Martin", rec.Client)
	require.Equal(t, "2", rec.Quantity)
	require.Equal(t, "12,5", rec.UnitPriceHT)
	require.Equal(t, 1, rec.Date.Day())

	row, err := sheetdesk.QuoteSchema.Encode(rec, sheetdesk.DefaultDateFormat())
	require.NoError(t, err)
	require.Equal(t, "01/02/2024", row[1])

	t.Run("errors keep the submitted values", func(t *testing.T) {
		rec, view := parseRecord(sheetdesk.QuoteSchema, quoteFields, "/quotes/new", url.Values{"quantite": {"3"}})
		require.Nil(t, rec)
		require.False(t, view.Valid())
		for _, f := range view.Fields {
			switch f.Name {
			case "client", "date_jour":
				require.Equal(t, msgRequired, f.Error)
			case "quantite":
				require.Equal(t, "3", f.Value)
				require.Empty(t, f.Error)
			}
		}
	})
}

func TestRecordForm(t *testing.T) {
	rec, _ := parseRecord(sheetdesk.TicketSchema, ticketFields, "/tickets/new", ticketForm("Dupont"))
	require.NotNil(t, rec)

	view, err := recordForm(sheetdesk.TicketSchema, ticketFields, "/tickets/2/edit", rec)
	require.NoError(t, err)
	require.Equal(t, "/tickets/2/edit", view.Action)

	values := map[string]string{}
	for _, f := range view.Fields {
		values[f.Name] = f.Value
	}
	require.Equal(t, "2024-03-05", values["date_jour"])
	require.Equal(t, "06.12.34.56.78", values["numero_client"])
	require.Equal(t, sheetdesk.StatusTodo, values["statut"])
}

func TestFlash(t *testing.T) {
	rec := httptest.NewRecorder()
	setFlash(rec, flashError, "Erreur : l'archive a échoué\nligne 2")
	cookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()

	got := popFlash(rec, req)
	require.NotNil(t, got)
	require.Equal(t, flashError, got.Kind)
	require.Equal(t, "Erreur : l'archive a échoué\nligne 2", got.Message)

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Equal(t, -1, cleared[0].MaxAge)

	t.Run("tampered cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
		req.AddCookie(&http.Cookie{Name: flashCookie, Value: "!!"})
		require.Nil(t, popFlash(httptest.NewRecorder(), req))
	})

	t.Run("no cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
		require.Nil(t, popFlash(httptest.NewRecorder(), req))
	})
}

func TestFlashLongMessage(t *testing.T) {
	message := "Erreur lors de la lecture : " + strings.Repeat("é", 4000)
	rec := httptest.NewRecorder()
	setFlash(rec, flashError, message)
	cookie := rec.Result().Cookies()[0]
	require.Less(t, len(cookie.Value), 4000)

	req := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	req.AddCookie(cookie)
	got := popFlash(httptest.NewRecorder(), req)
	require.NotNil(t, got)
	require.LessOrEqual(t, len(got.Message), maxFlashBytes)
	require.True(t, utf8.ValidString(got.Message))
	require.True(t, strings.HasPrefix(got.Message, "Erreur lors de la lecture : é"))
	require.True(t, strings.HasSuffix(got.Message, "…"))

	require.Equal(t, "court", truncateMessage("court", maxFlashBytes))
}
