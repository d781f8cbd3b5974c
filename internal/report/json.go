package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sitescope/internal/model"
)

// JSONWriter outputs reports in JSON format for tools.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string

	// tab limits the output to one result tab when set.
	tab model.ResultTab
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithJSONTab limits the output to a single result tab.
// The empty tab writes the whole report.
func WithJSONTab(tab model.ResultTab) JSONWriterOption {
	return func(w *JSONWriter) {
		w.tab = tab
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the bare report, or the selected tab.
func (w *JSONWriter) Write(report *model.Report) (int, error) {
	if w.tab != "" {
		return w.writeJSON(NewJSONTab(report, w.tab, ""))
	}
	return w.writeJSON(report)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps a report with output metadata.
type JSONReport struct {
	// Version is the sitescope version that produced the report.
	Version string `json:"version"`

	Report  *model.Report `json:"report"`
	Summary model.Summary `json:"summary"`
}

// NewJSONReport creates a JSONReport with a freshly computed summary.
func NewJSONReport(report *model.Report, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Report:  report,
		Summary: report.Summarize(),
	}
}

// JSONTab is the JSON output of one result tab. Data holds the overview,
// the section or the code samples, depending on Tab.
type JSONTab struct {
	Version string          `json:"version,omitempty"`
	URL     string          `json:"url"`
	Tab     model.ResultTab `json:"tab"`
	Data    any             `json:"data"`
}

// NewJSONTab extracts tab from report.
func NewJSONTab(report *model.Report, tab model.ResultTab, version string) *JSONTab {
	out := &JSONTab{Version: version, URL: report.Overview.URL, Tab: tab}
	switch tab {
	case model.TabOverview:
		out.Data = report.Overview
	case model.TabCode:
		out.Data = report.Code
	default:
		if section, ok := report.Section(tab); ok {
			out.Data = section
		}
	}
	return out
}

// FullJSONWriter outputs reports wrapped in a JSONReport.
type FullJSONWriter struct {
	*JSONWriter

	version string
}

// NewFullJSONWriter creates a writer for reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the report wrapped with metadata.
func (w *FullJSONWriter) Write(report *model.Report) (int, error) {
	if w.tab != "" {
		return w.writeJSON(NewJSONTab(report, w.tab, w.version))
	}
	return w.writeJSON(NewJSONReport(report, w.version))
}
