package timetable

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/timetable.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/timetable.html.tmpl"))

// StylesheetHref is where the page expects its stylesheet, relative to the
// page itself.
const StylesheetHref = "style.css"

// WriteHTML renders doc as a standalone HTML page.
func WriteHTML(w io.Writer, doc Document) error {
	data := struct {
		Doc            Document
		StylesheetHref string
	}{Doc: doc, StylesheetHref: StylesheetHref}

	if err := pageTemplate.ExecuteTemplate(w, "timetable.html.tmpl", data); err != nil {
		return &RenderError{Stage: "html", Err: err}
	}
	return nil
}
