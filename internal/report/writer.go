package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/render"
)

// Writer outputs a report.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *model.Report) (int, error)
}

// MultiWriter writes a report to several Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to every writer and stops on the first error.
func (m *MultiWriter) Write(report *model.Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Format names an output format.
type Format string

// Output formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatJSON, FormatHTML}
}

// ParseFormat parses a format name. "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatMarkdown, FormatJSON, FormatHTML:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Options are the settings shared by NewWriter.
type Options struct {
	// Tab limits text and markdown output to one tab; empty means all.
	Tab model.ResultTab

	// Code selects the sample shown by the html export and by text output
	// of the code tab.
	Code model.CodeType

	// Color enables ANSI colours in text output.
	Color bool

	// Verbose adds the code samples to text output.
	Verbose bool

	// Locale is used for label casing.
	Locale language.Tag

	// Version is embedded by the json writer.
	Version string
}

// NewWriter returns the writer for format.
func NewWriter(format Format, output io.Writer, opts Options) (Writer, error) {
	switch format {
	case FormatText:
		return NewSimpleWriter(output,
			WithTab(opts.Tab),
			WithColor(opts.Color),
			WithVerbose(opts.Verbose),
			WithLocale(opts.Locale),
			WithCode(opts.Code),
		), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output, WithMarkdownTab(opts.Tab), WithMarkdownLocale(opts.Locale)), nil
	case FormatJSON:
		return NewFullJSONWriter(output, opts.Version, WithPrettyPrint(), WithJSONTab(opts.Tab)), nil
	case FormatHTML:
		return NewHTMLWriter(output, WithHTMLCode(opts.Code))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// titleCaser returns the caser for status labels.
// An undefined locale falls back to English.
func titleCaser(tag language.Tag) cases.Caser {
	if tag == language.Und {
		tag = language.English
	}
	return cases.Title(tag)
}

// includes reports whether a writer limited to only shows tab.
func includes(only, tab model.ResultTab) bool {
	return only == "" || only == tab
}

// itemText is the one-line description of an item used by the text
// formats: the name followed by its details.
func itemText(iv render.ItemView) string {
	if d := itemDetail(iv); d != "" {
		return iv.Name + " " + d
	}
	return iv.Name
}

// itemDetail joins version, value, description and tags of an item.
func itemDetail(iv render.ItemView) string {
	var parts []string
	for _, s := range []string{iv.Version, iv.Method, iv.Protocol, iv.Value} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if iv.Description != "" {
		parts = append(parts, "- "+iv.Description)
	}
	for _, tag := range []string{iv.Type, iv.Key, iv.Service} {
		if tag != "" {
			parts = append(parts, "["+tag+"]")
		}
	}
	return strings.Join(parts, " ")
}
