package server

import (
	"embed"
	"html/template"

	"storefront/internal/storefront"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"money": storefront.Money,
	"phone": storefront.Phone,
}).ParseFS(templateFS, "templates/*.tmpl"))
