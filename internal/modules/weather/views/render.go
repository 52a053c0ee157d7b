package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"

	"mateometeo/internal/modules/weather/aggregation"
)

var pageTmpl *template.Template

var funcs = template.FuncMap{
	"compass": aggregation.CompassPoint,
	"tenth":   formatTenth,
}

// loadTemplatesFromFS loads page and partial templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	pageTmpl, err = template.New("views").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

var errNotLoaded = errors.New("templates not loaded: call views.LoadTemplates during startup")

// RenderIndex writes the full landing page.
func RenderIndex(w io.Writer, data *IndexData) error {
	if pageTmpl == nil {
		return errNotLoaded
	}
	return pageTmpl.ExecuteTemplate(w, "index.html", data)
}

// RenderTablePartial executes only the aggregate table partial into w.
// Used for the day and month fragments.
func RenderTablePartial(w io.Writer, data *TableData) error {
	if pageTmpl == nil {
		return errNotLoaded
	}
	return pageTmpl.ExecuteTemplate(w, "partials/table.html", data)
}
