package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// page is the data of every rendered template.
type page struct {
	Title    string
	Section  string // tickets or quotes, highlights the navigation
	Flash    *flash
	Resource resourceView

	// list and archive pages
	Archive bool
	Columns []string
	Rows    []listRow
	Search  string
	Filter  *filterView
	Amount  *amountView
	Empty   string

	// create and edit pages
	Form formView
}

type resourceView struct {
	Path     string
	Title    string
	Singular string
}

type listRow struct {
	Index int
	Cells []string
}

type filterView struct {
	Name     string
	Label    string
	Choices  []string
	Selected string
}

// amountView is the min/max range filter on a numeric column.
type amountView struct {
	Label string
	Min   string
	Max   string
}

type renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

func newRenderer(logger *slog.Logger) (*renderer, error) {
	pages := map[string]*template.Template{}
	for _, name := range []string{"list", "form"} {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &renderer{pages: pages, logger: logger}, nil
}

// render executes the named page into a buffer so a template error never
// leaves a half written response.
func (rd *renderer) render(w http.ResponseWriter, status int, name string, data page) {
	tmpl, ok := rd.pages[name]
	if !ok {
		rd.logger.Error("unknown template", "name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.logger.Error("failed to render template", "name", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
