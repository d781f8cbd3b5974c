package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/render"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for the terminal.
// Status tags are coloured by tone unless colour is disabled.
type SimpleWriter struct {
	baseWriter

	tab     model.ResultTab
	code    model.CodeType
	color   bool
	verbose bool
	caser   cases.Caser
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithTab limits the output to one tab. The overview tab prints only the
// overview; the code tab prints only the selected code sample.
func WithTab(tab model.ResultTab) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.tab = tab
	}
}

// WithCode selects the code sample printed for the code tab.
func WithCode(code model.CodeType) SimpleWriterOption {
	return func(w *SimpleWriter) {
		if code != "" {
			w.code = code
		}
	}
}

// WithColor enables or disables ANSI colours.
func WithColor(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.color = enabled
	}
}

// WithVerbose appends every code sample to the full report.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithLocale sets the locale used to case status labels.
func WithLocale(tag language.Tag) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.caser = titleCaser(tag)
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		code:       model.CodeHTML,
		caser:      titleCaser(language.English),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder
	view := render.BuildView(report)

	w.writeHeader(&sb, view.Overview)

	switch w.tab {
	case model.TabOverview:
	case model.TabCode:
		w.writeCode(&sb, report, w.code)
	default:
		for _, section := range view.Sections {
			if includes(w.tab, section.Tab) {
				w.writeSection(&sb, section)
			}
		}
		if w.tab == "" {
			w.writeSummary(&sb, report.Summarize())
			if w.verbose {
				for _, ct := range model.CodeTypes {
					w.writeCode(&sb, report, ct)
				}
			}
		}
	}

	w.writeFooter(&sb, report)
	return w.output.Write([]byte(sb.String()))
}

func rule(sb *strings.Builder, ch string) {
	sb.WriteString(strings.Repeat(ch, ruleWidth))
	sb.WriteString("\n")
}

func (w *SimpleWriter) heading(sb *strings.Builder, title string) {
	rule(sb, "-")
	sb.WriteString(strings.ToUpper(title))
	sb.WriteString("\n")
	rule(sb, "-")
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, o render.OverviewView) {
	sb.WriteString("\n")
	rule(sb, "=")
	sb.WriteString("                        SITESCOPE REPORT\n")
	rule(sb, "=")
	sb.WriteString("\n")

	fmt.Fprintf(sb, "Title:          %s\n", o.Title)
	fmt.Fprintf(sb, "URL:            %s\n", o.URL)
	fmt.Fprintf(sb, "Last Analyzed:  %s\n", o.LastAnalyzed)
	fmt.Fprintf(sb, "Response Time:  %s\n", o.ResponseTime)
	fmt.Fprintf(sb, "IP Address:     %s\n", o.IPAddress)
	for _, f := range o.Facts {
		fmt.Fprintf(sb, "%-16s%s\n", f.Label+":", f.Value)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, section render.SectionView) {
	w.heading(sb, section.Title)
	for _, g := range section.Groups {
		sb.WriteString(g.Title + "\n")
		if len(g.Items) == 0 {
			sb.WriteString("  (none)\n")
		}
		for _, item := range g.Items {
			if item.Status != "" {
				fmt.Fprintf(sb, "  %s %s\n", w.tag(item.Status), itemText(item))
			} else {
				fmt.Fprintf(sb, "  * %s\n", itemText(item))
			}
		}
		sb.WriteString("\n")
	}
}

// tag returns the bracketed status label, coloured by tone.
func (w *SimpleWriter) tag(status string) string {
	label := "[" + w.caser.String(status) + "]"
	c := toneColor(model.Status(status).Tone())
	if w.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(label)
}

func toneColor(t model.Tone) *color.Color {
	switch t {
	case model.TonePositive:
		return color.New(color.FgGreen)
	case model.ToneCaution:
		return color.New(color.FgYellow)
	case model.ToneNegative:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, sum model.Summary) {
	w.heading(sb, "Summary")
	fmt.Fprintf(sb, "  POSITIVE: %d\n", sum.Positive)
	fmt.Fprintf(sb, "  CAUTION:  %d\n", sum.Caution)
	fmt.Fprintf(sb, "  NEGATIVE: %d\n", sum.Negative)
	fmt.Fprintf(sb, "  NEUTRAL:  %d\n", sum.Neutral)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:    %d items\n", sum.Total)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCode(sb *strings.Builder, report *model.Report, ct model.CodeType) {
	w.heading(sb, "Source Code: "+ct.Filename())
	sb.WriteString(report.Code.Get(ct))
	if !strings.HasSuffix(report.Code.Get(ct), "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder, report *model.Report) {
	rule(sb, "=")
	if report.Digest != "" {
		fmt.Fprintf(sb, "Digest: %s\n", report.Digest)
	}
	sb.WriteString("All analysis data is simulated for demonstration purposes.\n")
	rule(sb, "=")
}
