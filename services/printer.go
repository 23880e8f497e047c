package services

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"listing-map/models"
)

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Selected Properties</title>
<style>
  body { font-family: Arial, sans-serif; margin: 20px; }
  .property { margin-bottom: 30px; border-bottom: 1px solid #ccc; padding-bottom: 20px; page-break-inside: avoid; break-inside: avoid; }
  .property-name { font-size: 18px; font-weight: bold; margin-bottom: 5px; }
  .property-address { color: #666; margin-bottom: 10px; }
</style>
</head>
<body>
<h1>Selected Properties Report</h1>
<p>Generated {{ .Generated }}</p>
{{- range .Items }}
<div class="property">
  <div class="property-name">{{ .Name }}</div>
  <div class="property-address">{{ .Address }}</div>
  {{- if .Nhood }}
  <div class="property-address">{{ .Nhood }}</div>
  {{- end }}
  <ul class="property-details">
  {{- range .Columns }}
    <li><strong>{{ .Title }}:</strong> {{ .Text }}</li>
  {{- end }}
  </ul>
</div>
{{- end }}
</body>
</html>
`

type reportColumn struct {
	Title string
	Text  string
}

type reportItem struct {
	Name    string
	Address string
	Nhood   string
	Columns []reportColumn
}

type reportData struct {
	Generated string
	Items     []reportItem
}

// Printer renders selected listings as a standalone printable HTML document.
type Printer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
}

func NewPrinter() *Printer {
	return &Printer{
		tmpl:   template.Must(template.New("report").Parse(reportTemplate)),
		policy: bluemonday.StrictPolicy(),
	}
}

// Render builds the report. Board text is stripped of markup before it is
// escaped into the page.
func (p *Printer) Render(items []*models.ListingItem, now time.Time) ([]byte, error) {
	if len(items) == 0 {
		return nil, ErrEmptySelection
	}

	data := reportData{Generated: now.Format("1/2/2006")}
	for _, it := range items {
		ri := reportItem{
			Name:    p.clean(it.Name),
			Address: p.clean(it.DisplayAddress()),
			Nhood:   p.clean(it.NhoodCity),
		}
		for _, c := range it.VisibleColumns() {
			ri.Columns = append(ri.Columns, reportColumn{Title: p.clean(c.Title), Text: p.clean(c.Text)})
		}
		data.Items = append(data.Items, ri)
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("printer: render: %w", err)
	}
	return buf.Bytes(), nil
}

// clean drops tags and unescapes entities so the template escapes exactly once.
func (p *Printer) clean(s string) string {
	return html.UnescapeString(p.policy.Sanitize(s))
}
