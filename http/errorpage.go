package http

import (
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dustin/go-humanize"
	"github.com/sagarc03/sitehost"
)

const defaultNotFoundHTML = `<html>
<head><title>404 Not Found</title></head>
<body>
<center><h1>404 Not Found</h1></center>
<hr><center>sitehost</center>
</body>
</html>`

func writeDefaultNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, defaultNotFoundHTML)
}

var listingTemplate = template.Must(template.New("listing").Funcs(template.FuncMap{
	"bytes":   func(n int64) string { return humanize.Bytes(uint64(max(n, 0))) },
	"segment": url.PathEscape,
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Slug}}</title></head>
<body>
<h1>{{.Slug}}</h1>
<ul>
{{- range .Entries}}
<li><a href="/sites/{{$.Slug}}/{{segment .Name}}{{if .IsDir}}/{{end}}">{{.Name}}{{if .IsDir}}/{{end}}</a>{{if not .IsDir}} ({{bytes .Size}}){{end}}</li>
{{- end}}
</ul>
<hr><center>sitehost</center>
</body>
</html>`))

func writeListing(w http.ResponseWriter, view sitehost.View) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := listingTemplate.Execute(w, view); err != nil {
		slog.Error("failed to render listing", "slug", view.Slug, "error", err)
	}
}
