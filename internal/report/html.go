package report

import (
	"bytes"
	"io"

	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/render"
)

// HTMLWriter exports a report as a standalone page. Every tab is shown at
// once and the page has no forms.
type HTMLWriter struct {
	baseWriter

	renderer *render.Renderer
	code     model.CodeType
}

// HTMLWriterOption configures an HTMLWriter.
type HTMLWriterOption func(*HTMLWriter)

// WithHTMLCode selects the code sample included in the page.
func WithHTMLCode(code model.CodeType) HTMLWriterOption {
	return func(w *HTMLWriter) {
		if code != "" {
			w.code = code
		}
	}
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer, opts ...HTMLWriterOption) (*HTMLWriter, error) {
	r, err := render.New()
	if err != nil {
		return nil, err
	}
	w := &HTMLWriter{
		baseWriter: newBaseWriter(output),
		renderer:   r,
		code:       model.CodeHTML,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Write renders the page into a buffer first so that a template error
// never leaves a truncated page behind.
func (w *HTMLWriter) Write(report *model.Report) (int, error) {
	view := render.BuildView(report)
	containers := render.Containers{}
	if err := w.renderer.RenderView(view, containers); err != nil {
		return 0, err
	}
	w.renderer.RenderCode(report.Code.Get(w.code), containers)

	codeTabs := model.NewCodeTabs()
	if _, err := codeTabs.Select(w.code); err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	err := w.renderer.RenderPage(&buf, render.PageData{
		Title:      "sitescope report - " + report.Overview.Domain,
		Input:      report.Overview.URL,
		Phase:      render.PhaseResults,
		ActiveTab:  string(model.TabOverview),
		Tabs:       render.TabViews(model.NewResultTabs()),
		CodeTabs:   render.TabViews(codeTabs),
		View:       view,
		Containers: containers,
	})
	if err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
