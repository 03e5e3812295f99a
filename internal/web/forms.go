package web

import (
	"errors"
	"net/url"
	"slices"
	"strings"
	"time"

	sheetdesk "github.com/ideamans/go-sheetdesk"
)

// htmlDateLayout is the value format of <input type="date">.
const htmlDateLayout = "2006-01-02"

// formDates converts between form values and records.
var formDates = sheetdesk.DateFormat{Read: htmlDateLayout, Write: htmlDateLayout}

type fieldKind string

const (
	kindText     fieldKind = "text"
	kindTextarea fieldKind = "textarea"
	kindDate     fieldKind = "date"
	kindSelect   fieldKind = "select"
	kindRadio    fieldKind = "radio"
	kindPhone    fieldKind = "tel"
)

// formField describes the input of one schema column. Name is the column name.
type formField struct {
	Name     string
	Label    string
	Kind     fieldKind
	Required bool
	Choices  []string
}

var yesNo = []string{sheetdesk.Yes, sheetdesk.No}

var ticketFields = []formField{
	{Name: "statut", Label: "Statut", Kind: kindSelect, Required: true, Choices: sheetdesk.TicketStatuses},
	{Name: "cgv_dech", Label: "CGV DECH", Kind: kindRadio, Required: true, Choices: yesNo},
	{Name: "client", Label: "Client", Kind: kindText, Required: true},
	{Name: "date_jour", Label: "Date", Kind: kindDate, Required: true},
	{Name: "tech", Label: "TECH", Kind: kindText},
	{Name: "numero_client", Label: "Numéro", Kind: kindPhone, Required: true},
	{Name: "details", Label: "Détails/Symptômes", Kind: kindTextarea},
	{Name: "materiel", Label: "Matériel/Marque", Kind: kindText},
	{Name: "prestations", Label: "Prestation proposée", Kind: kindText},
	{Name: "accepte", Label: "Accepté", Kind: kindRadio, Required: true, Choices: yesNo},
	{Name: "resultat", Label: "Résultat", Kind: kindText},
	{Name: "tarif", Label: "Tarif", Kind: kindText},
	{Name: "prevenu", Label: "Prévenu", Kind: kindRadio, Required: true, Choices: yesNo},
}

var quoteFields = []formField{
	{Name: "client", Label: "Client", Kind: kindText, Required: true},
	{Name: "date_jour", Label: "Date", Kind: kindDate, Required: true},
	{Name: "description", Label: "Description", Kind: kindTextarea},
	{Name: "quantite", Label: "Quantité", Kind: kindText},
	{Name: "unite", Label: "Unité", Kind: kindText},
	{Name: "prix_unit_ht", Label: "Prix unitaire HT", Kind: kindText},
	{Name: "total_ht", Label: "Total HT", Kind: kindText},
	{Name: "tva", Label: "TVA", Kind: kindText},
	{Name: "ttc", Label: "TTC", Kind: kindText},
}

// Validation messages shown next to the inputs.
const (
	msgRequired    = "Ce champ est obligatoire."
	msgInvalid     = "Valeur invalide."
	msgInvalidDate = "Date invalide."
)

// fieldView is a form input with its current value and error.
type fieldView struct {
	formField
	Value string
	Error string
}

// formView is the state of a create or edit form.
type formView struct {
	Action string
	Fields []fieldView
}

func (f formView) Valid() bool {
	for _, field := range f.Fields {
		if field.Error != "" {
			return false
		}
	}
	return true
}

func (f *formView) setError(name, msg string) {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			f.Fields[i].Error = msg
			return
		}
	}
}

func newFormView(action string, fields []formField, values map[string]string) formView {
	view := formView{Action: action, Fields: make([]fieldView, len(fields))}
	for i, f := range fields {
		view.Fields[i] = fieldView{formField: f, Value: values[f.Name]}
	}
	return view
}

// parseRecord validates submitted values and decodes them into a record.
// The returned view carries the normalized values and any field errors.
func parseRecord[R any](schema sheetdesk.Schema[R], fields []formField, action string, form url.Values) (*R, formView) {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		v := strings.TrimSpace(form.Get(f.Name))
		if f.Kind == kindPhone {
			v = FormatPhone(v)
		}
		values[f.Name] = v
	}

	view := newFormView(action, fields, values)
	for i, f := range view.Fields {
		switch {
		case f.Value == "":
			if f.Required {
				view.Fields[i].Error = msgRequired
			}
		case f.Choices != nil && !slices.Contains(f.Choices, f.Value):
			view.Fields[i].Error = msgInvalid
		case f.Kind == kindDate:
			if _, err := time.Parse(htmlDateLayout, f.Value); err != nil {
				view.Fields[i].Error = msgInvalidDate
			}
		}
	}
	if !view.Valid() {
		return nil, view
	}

	row := make([]string, schema.Columns())
	for i, name := range schema.Names() {
		row[i] = values[name]
	}
	rec, err := schema.Decode(row, formDates)
	if err != nil {
		var verr *sheetdesk.ValidationError
		var derr *sheetdesk.DateParseError
		switch {
		case errors.As(err, &derr):
			view.setError(derr.Field, msgInvalidDate)
		case errors.As(err, &verr):
			view.setError(verr.Field, msgRequired)
		default:
			view.setError(fields[0].Name, err.Error())
		}
		return nil, view
	}
	return rec, view
}

// recordForm fills a form with the values of rec.
func recordForm[R any](schema sheetdesk.Schema[R], fields []formField, action string, rec *R) (formView, error) {
	row, err := schema.Encode(rec, formDates)
	if err != nil {
		return formView{}, err
	}
	values := make(map[string]string, len(row))
	for i, name := range schema.Names() {
		values[name] = row[i]
	}
	return newFormView(action, fields, values), nil
}

// FormatPhone keeps the first 10 digits of s and groups them by two with
// dots: "0612345678" becomes "06.12.34.56.78".
func FormatPhone(s string) string {
	var b strings.Builder
	digits := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		if digits == 10 {
			break
		}
		if digits > 0 && digits%2 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
		digits++
	}
	return b.String()
}
