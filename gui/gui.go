package gui

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var funcs = template.FuncMap{
	"lower": strings.ToLower,
}

// Templates parses every page template with the shared layout.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}

func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
