package info

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
)

const defaultDocsTitle = "Neurosynth query API"

//go:embed assets/docs.html
var stoplightHTML string

var stoplightPage = template.Must(template.New("docs").Parse(stoplightHTML))

// docsPage renders the HTML viewer for the OpenAPI document.
type docsPage struct {
	baseURL string
	tmpl    *template.Template
	data    TemplateDataProvider
}

func (p docsPage) render(r *http.Request) ([]byte, error) {
	data := p.data(r, p.baseURL)
	if data == nil {
		data = defaultTemplateData(r, p.baseURL)
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func defaultTemplateData(_ *http.Request, baseURL string) any {
	return map[string]any{
		"BaseURL": baseURL,
		"Title":   defaultDocsTitle,
	}
}
