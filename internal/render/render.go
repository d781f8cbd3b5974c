package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/nao1215/sitescope/internal/model"
)

//go:embed templates/*.gohtml templates/style.css
var templateFS embed.FS

// Containers holds the markup of each page container, keyed by id.
type Containers map[string]template.HTML

// Replace sets the whole content of container id.
func (c Containers) Replace(id string, markup template.HTML) {
	c[id] = markup
}

// Renderer turns view models into HTML fragments.
// It is safe for concurrent use once created.
type Renderer struct {
	templates *template.Template
	logger    *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// New creates a Renderer with the embedded templates.
func New(opts ...Option) (*Renderer, error) {
	tmpl, err := template.New("render").Funcs(funcs).ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r := &Renderer{templates: tmpl, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render fills containers with the overview and every section group of
// report. The previous content of each container is replaced entirely,
// so rendering the same report twice gives identical containers.
func (r *Renderer) Render(report *model.Report, containers Containers) error {
	return r.RenderView(BuildView(report), containers)
}

// RenderView is Render for an already built view model.
func (r *Renderer) RenderView(view View, containers Containers) error {
	markup, err := r.fragment("overview", view.Overview)
	if err != nil {
		return err
	}
	containers.Replace(view.Overview.ContainerID, markup)

	for _, section := range view.Sections {
		for _, g := range section.Groups {
			markup, err := r.fragment("items-"+string(g.Layout), g.Items)
			if err != nil {
				return fmt.Errorf("render %s: %w", g.ContainerID, err)
			}
			containers.Replace(g.ContainerID, markup)
		}
	}
	r.logger.Debug("report rendered", "containers", len(containers))
	return nil
}

// RenderCode sets the code container to text, escaped.
func (r *Renderer) RenderCode(text string, containers Containers) {
	containers.Replace(CodeContainerID, template.HTML(template.HTMLEscapeString(text))) //nolint:gosec // escaped above
}

func (r *Renderer) fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}

// Stylesheet returns the embedded page stylesheet.
func Stylesheet() (string, error) {
	css, err := templateFS.ReadFile("templates/style.css")
	if err != nil {
		return "", fmt.Errorf("failed to read stylesheet: %w", err)
	}
	return string(css), nil
}
