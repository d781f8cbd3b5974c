package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/nao1215/sitescope/internal/model"
)

// Page phases, mirroring the visible section of the page.
const (
	PhaseIdle    = "idle"
	PhaseLoading = "loading"
	PhaseResults = "results"
	PhaseError   = "error"
)

// PageData is everything the page template needs.
type PageData struct {
	// Title is the document title.
	Title string

	// Input is the current value of the URL field.
	Input string

	// Phase selects which page section is visible.
	Phase string

	// Message is the inline error message for PhaseError.
	Message string

	// Notice is a transient notification shown once, or nil.
	Notice *Notice

	// Stages lists the progress stages for PhaseLoading.
	Stages []StageView

	// ActiveTab is the id of the visible result tab.
	ActiveTab string

	// Tabs and CodeTabs are the result and code tab buttons.
	Tabs     []TabView
	CodeTabs []TabView

	// View supplies group titles and container ids.
	View View

	// Containers holds the rendered markup of every container.
	Containers Containers

	// Examples are the URLs offered as one-click examples.
	Examples []string

	// RefreshSeconds makes the page reload itself while loading; 0 disables it.
	RefreshSeconds int

	// Interactive enables forms and tab buttons. Static exports show every
	// tab at once instead.
	Interactive bool

	// ClipboardText, when set, is written to the browser clipboard on load.
	ClipboardText string

	// Stylesheet is inlined into the page.
	Stylesheet template.CSS
}

// Notice is a transient notification.
type Notice struct {
	// Kind is "success", "error" or "info".
	Kind string
	Text string
}

// StageView is one progress stage indicator.
type StageView struct {
	Number int
	Label  string
	Active bool
	Done   bool
}

// TabView is one tab button.
type TabView struct {
	ID     string
	Title  string
	Active bool
}

// titledTab is a tab id with a display title.
type titledTab interface {
	~string
	Title() string
}

// TabViews returns the buttons of a tab group in order, marking the
// active one.
func TabViews[T titledTab](g model.TabGroup[T]) []TabView {
	tabs := g.Tabs()
	views := make([]TabView, 0, len(tabs))
	for _, t := range tabs {
		views = append(views, TabView{ID: string(t), Title: t.Title(), Active: g.IsActive(t)})
	}
	return views
}

var funcs = template.FuncMap{
	"containerOf": func(c Containers, id string) template.HTML {
		return c[id]
	},
	"noticeIcon": func(kind string) string {
		switch kind {
		case "success":
			return "check-circle"
		case "error":
			return "exclamation-circle"
		default:
			return "info-circle"
		}
	},
}

// RenderPage writes the whole page.
func (r *Renderer) RenderPage(w io.Writer, data PageData) error {
	if data.Stylesheet == "" {
		css, err := Stylesheet()
		if err != nil {
			return err
		}
		data.Stylesheet = template.CSS(css) //nolint:gosec // embedded file
	}
	if data.Containers == nil {
		data.Containers = Containers{}
	}
	if err := r.templates.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
