package listing

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/erazemk/najdeno/internal/model"
	webembed "github.com/erazemk/najdeno/web"
)

// DefaultPlaceholder is the image shown for records without a photo.
const DefaultPlaceholder = "/static/placeholder.svg"

// Renderer turns a collection of records into card markup.
type Renderer struct {
	tmpl        *template.Template
	placeholder string
}

// NewRenderer parses the region template. An empty placeholder selects
// DefaultPlaceholder.
func NewRenderer(placeholder string) (*Renderer, error) {
	src, err := fs.ReadFile(webembed.TemplatesFS(), "region.html")
	if err != nil {
		return nil, fmt.Errorf("reading region template: %w", err)
	}

	tmpl, err := template.New("region.html").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parsing region template: %w", err)
	}

	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Renderer{tmpl: tmpl, placeholder: placeholder}, nil
}

// Render renders records of the given kind, keeping their order.
func (r *Renderer) Render(kind model.Kind, records []model.Record) (template.HTML, error) {
	var buf bytes.Buffer
	err := r.tmpl.ExecuteTemplate(&buf, "region", struct {
		Kind        model.Kind
		Label       string
		Placeholder string
		Records     []model.Record
	}{
		Kind:        kind,
		Label:       kind.Label(),
		Placeholder: r.placeholder,
		Records:     records,
	})
	if err != nil {
		return "", fmt.Errorf("rendering %s items: %w", kind, err)
	}
	return template.HTML(buf.String()), nil
}
