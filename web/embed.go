// Package web holds the embedded credential-entry and frame views.
package web

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Render writes the named template with the given data.
func Render(w io.Writer, name string, data interface{}) error {
	return templates.ExecuteTemplate(w, name, data)
}
