package httpapi

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pages = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

type messagePage struct {
	Title   string
	Message string
}

type resetPage struct {
	Action string
	Token  string
	Error  string
}
