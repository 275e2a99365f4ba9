package localstore

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/devco/docmerge"
)

// documentTemplate renders a document tree as a printable HTML page. Image
// sizes come from the insert request, so a 50x150pt signature prints at
// exactly that footprint.
var documentTemplate = template.Must(template.New("document").Funcs(template.FuncMap{
	"text": runText,
	"src":  imageSource,
	"dim":  dimension,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; font-size: 11pt; }
p { margin: 0 0 6pt 0; white-space: pre-wrap; }
table { border-collapse: collapse; margin: 6pt 0; }
td { border: 1px solid #999; padding: 4pt; vertical-align: top; }
</style>
</head>
<body>
{{template "content" .Content}}
</body>
</html>
{{define "content"}}{{range .}}{{if .Paragraph}}<p>{{range .Paragraph.Elements}}{{if .TextRun}}{{text .TextRun.Content}}{{else if .InlineImage}}<img src="{{src .InlineImage.URI}}" style="width: {{dim .InlineImage.Width}}; height: {{dim .InlineImage.Height}};">{{end}}{{end}}</p>
{{else if .Table}}<table>
{{range .Table.Rows}}<tr>{{range .Cells}}<td>{{template "content" .Content}}</td>{{end}}</tr>
{{end}}</table>
{{end}}{{end}}{{end}}`))

// RenderHTML renders doc as a standalone HTML page.
func RenderHTML(doc *docmerge.Document) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("rendering document: %w", err)
	}
	return buf.String(), nil
}

// runText drops the paragraph terminator; pre-wrap keeps inner newlines.
func runText(s string) string {
	return strings.TrimSuffix(s, "\n")
}

// imageSource passes data URIs and http(s) URLs through as trusted URLs.
func imageSource(uri string) template.URL {
	switch {
	case strings.HasPrefix(uri, "data:image/"),
		strings.HasPrefix(uri, "https://"),
		strings.HasPrefix(uri, "http://"):
		return template.URL(uri) // #nosec G203 -- scheme restricted above
	}
	return ""
}

// dimension renders a size as CSS, defaulting to auto.
func dimension(d docmerge.Dimension) template.CSS {
	if d.Magnitude <= 0 {
		return "auto"
	}
	unit := "pt"
	if d.Unit != "" && d.Unit != docmerge.UnitPoints {
		unit = strings.ToLower(d.Unit)
	}
	return template.CSS(fmt.Sprintf("%g%s", d.Magnitude, unit)) // #nosec G203 -- numeric value
}
