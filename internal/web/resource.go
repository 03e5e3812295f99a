package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	sheetdesk "github.com/ideamans/go-sheetdesk"
)

// resource serves the pages of one record kind.
type resource[R any] struct {
	path     string // URL prefix, e.g. /tickets
	section  string
	title    string
	singular string
	table    *sheetdesk.Table[R]
	fields   []formField
	filter   string // column offered as a list filter, optional
	amount   string // numeric column offered as a min/max range filter, optional
	render   *renderer
	logger   *slog.Logger
}

func (res *resource[R]) routes(r chi.Router) {
	r.Get("/", res.handleList)
	r.Get("/archive", res.handleArchiveList)
	r.Get("/new", res.handleNew)
	r.Post("/new", res.handleCreate)
	r.Get("/{row}/edit", res.handleEdit)
	r.Post("/{row}/edit", res.handleUpdate)
	r.Post("/{row}/delete", res.handleDelete)
	r.Post("/{row}/archive", res.handleArchive)
}

func (res *resource[R]) view() resourceView {
	return resourceView{Path: res.path, Title: res.title, Singular: res.singular}
}

func (res *resource[R]) handleList(w http.ResponseWriter, r *http.Request) {
	res.list(w, r, false)
}

func (res *resource[R]) handleArchiveList(w http.ResponseWriter, r *http.Request) {
	res.list(w, r, true)
}

func (res *resource[R]) list(w http.ResponseWriter, r *http.Request, archive bool) {
	read := res.table.Rows
	title := res.title
	if archive {
		read = res.table.ArchiveRows
		title = "Archive " + res.title
	}

	data := page{
		Title:    title,
		Section:  res.section,
		Flash:    popFlash(w, r),
		Resource: res.view(),
		Archive:  archive,
		Empty:    "Aucune ligne.",
	}
	for _, f := range res.fields {
		data.Columns = append(data.Columns, f.Label)
	}

	rows, err := read(r.Context())
	if err != nil {
		res.logger.Error("failed to list rows", "table", res.section, "archive", archive, "error", err)
		data.Flash = &flash{Kind: flashError, Message: "Erreur lors de la lecture de la feuille : " + err.Error()}
		res.render.render(w, http.StatusBadGateway, "list", data)
		return
	}

	query := res.listQuery(r, &data)
	rows, err = res.table.Schema().ApplyQuery(rows, query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	columns := res.table.Schema().Columns()
	for _, row := range rows {
		cells := make([]string, columns)
		copy(cells, row.Values)
		data.Rows = append(data.Rows, listRow{Index: row.Index, Cells: cells})
	}
	res.render.render(w, http.StatusOK, "list", data)
}

// listQuery builds the row filter from ?q= (client contains), the amount
// range and the resource's filter column.
func (res *resource[R]) listQuery(r *http.Request, data *page) sheetdesk.Query {
	var query sheetdesk.Query
	if q := r.URL.Query().Get("q"); q != "" {
		data.Search = q
		query.Conditions = append(query.Conditions, sheetdesk.Condition{Column: "client", Operator: "contains", Value: q})
	}
	query.Conditions = append(query.Conditions, res.amountConditions(r, data)...)
	if res.filter == "" {
		return query
	}
	for _, f := range res.fields {
		if f.Name != res.filter {
			continue
		}
		selected := r.URL.Query().Get(f.Name)
		data.Filter = &filterView{Name: f.Name, Label: f.Label, Choices: f.Choices, Selected: selected}
		if selected != "" {
			query.Conditions = append(query.Conditions, sheetdesk.Condition{Column: f.Name, Operator: "==", Value: selected})
		}
	}
	return query
}

// amountConditions turns ?min= and ?max= into a range on the amount column.
// Bounds accept "12,5" as well as "12.5"; rows whose cell is not a number
// never match.
func (res *resource[R]) amountConditions(r *http.Request, data *page) []sheetdesk.Condition {
	if res.amount == "" {
		return nil
	}
	minValue := strings.TrimSpace(r.URL.Query().Get("min"))
	maxValue := strings.TrimSpace(r.URL.Query().Get("max"))
	view := &amountView{Min: minValue, Max: maxValue}
	for _, f := range res.fields {
		if f.Name == res.amount {
			view.Label = f.Label
		}
	}
	data.Amount = view

	switch {
	case minValue != "" && maxValue != "":
		return []sheetdesk.Condition{{Column: res.amount, Operator: "between", Values: []string{minValue, maxValue}}}
	case minValue != "":
		return []sheetdesk.Condition{{Column: res.amount, Operator: ">=", Value: minValue}}
	case maxValue != "":
		return []sheetdesk.Condition{{Column: res.amount, Operator: "<=", Value: maxValue}}
	}
	return nil
}

func (res *resource[R]) handleNew(w http.ResponseWriter, r *http.Request) {
	values := map[string]string{}
	for _, f := range res.fields {
		switch {
		case f.Kind == kindDate:
			values[f.Name] = timeNow().Format(htmlDateLayout)
		case f.Choices != nil:
			values[f.Name] = f.Choices[0]
		}
	}
	res.renderForm(w, r, http.StatusOK, "Nouveau "+res.singular, newFormView(res.path+"/new", res.fields, values))
}

func (res *resource[R]) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	rec, form := parseRecord(res.table.Schema(), res.fields, res.path+"/new", r.PostForm)
	if rec == nil {
		res.renderForm(w, r, http.StatusUnprocessableEntity, "Nouveau "+res.singular, form)
		return
	}

	if err := res.table.Create(r.Context(), rec); err != nil {
		res.fail(w, r, "Erreur lors de l'ajout", err)
		return
	}
	setFlash(w, flashSuccess, res.singular+" ajouté avec succès !")
	http.Redirect(w, r, res.path, http.StatusSeeOther)
}

func (res *resource[R]) handleEdit(w http.ResponseWriter, r *http.Request) {
	row, ok := rowParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	rec, err := res.table.Get(r.Context(), row)
	if err != nil {
		if sheetdesk.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		res.fail(w, r, "Erreur lors de la lecture", err)
		return
	}

	form, err := recordForm(res.table.Schema(), res.fields, editPath(res.path, row), rec)
	if err != nil {
		res.fail(w, r, "Erreur lors de la lecture", err)
		return
	}
	res.renderForm(w, r, http.StatusOK, fmt.Sprintf("Modifier %s (ligne %d)", res.singular, row), form)
}

func (res *resource[R]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	row, ok := rowParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	rec, form := parseRecord(res.table.Schema(), res.fields, editPath(res.path, row), r.PostForm)
	if rec == nil {
		res.renderForm(w, r, http.StatusUnprocessableEntity, fmt.Sprintf("Modifier %s (ligne %d)", res.singular, row), form)
		return
	}

	// Updating past the data would silently create a row. A stored row that
	// fails to decode still exists and may be overwritten to correct it.
	if _, err := res.table.Get(r.Context(), row); err != nil {
		switch {
		case sheetdesk.IsNotFound(err):
			http.NotFound(w, r)
			return
		case errors.Is(err, sheetdesk.ErrDateParse), errors.Is(err, sheetdesk.ErrValidation):
		default:
			res.fail(w, r, "Erreur lors de la mise à jour", err)
			return
		}
	}

	if err := res.table.Update(r.Context(), row, rec); err != nil {
		res.fail(w, r, "Erreur lors de la mise à jour", err)
		return
	}
	setFlash(w, flashSuccess, res.singular+" mis à jour avec succès !")
	http.Redirect(w, r, res.path, http.StatusSeeOther)
}

func (res *resource[R]) handleDelete(w http.ResponseWriter, r *http.Request) {
	row, ok := rowParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := res.table.Delete(r.Context(), row); err != nil {
		res.fail(w, r, "Erreur lors de la suppression", err)
		return
	}
	setFlash(w, flashSuccess, res.singular+" supprimé avec succès !")
	http.Redirect(w, r, res.path, http.StatusSeeOther)
}

func (res *resource[R]) handleArchive(w http.ResponseWriter, r *http.Request) {
	row, ok := rowParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	err := res.table.Archive(r.Context(), row)
	var aerr *sheetdesk.ArchiveError
	switch {
	case err == nil:
		setFlash(w, flashSuccess, res.singular+" archivé avec succès !")
	case sheetdesk.IsNotFound(err):
		http.NotFound(w, r)
		return
	case errors.As(err, &aerr) && aerr.Duplicated():
		res.logger.Error("archive left a duplicate", "table", res.section, "row", row, "error", err)
		setFlash(w, flashError, fmt.Sprintf("%s copié dans l'archive mais pas supprimé de la ligne %d : %v", res.singular, row, aerr.Err))
	default:
		res.fail(w, r, "Erreur lors de l'archivage", err)
		return
	}
	http.Redirect(w, r, res.path, http.StatusSeeOther)
}

func (res *resource[R]) renderForm(w http.ResponseWriter, r *http.Request, status int, title string, form formView) {
	res.render.render(w, status, "form", page{
		Title:    title,
		Section:  res.section,
		Flash:    popFlash(w, r),
		Resource: res.view(),
		Form:     form,
	})
}

// fail reports err as a flash message on the list page.
func (res *resource[R]) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	res.logger.Error("request failed", "table", res.section, "method", r.Method, "path", r.URL.Path, "error", err)
	setFlash(w, flashError, fmt.Sprintf("%s du %s : %v", action, strings.ToLower(res.singular), err))
	http.Redirect(w, r, res.path, http.StatusSeeOther)
}

// rowParam returns the {row} URL parameter when it addresses a data row.
func rowParam(r *http.Request) (int, bool) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row < sheetdesk.FirstDataRow {
		return 0, false
	}
	return row, true
}

func editPath(prefix string, row int) string {
	return fmt.Sprintf("%s/%d/edit", prefix, row)
}

