package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/render"
)

// MarkdownWriter outputs reports in Markdown format for sharing and
// documentation.
type MarkdownWriter struct {
	baseWriter

	tab   model.ResultTab
	caser cases.Caser
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownTab limits the output to one tab.
func WithMarkdownTab(tab model.ResultTab) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.tab = tab
	}
}

// WithMarkdownLocale sets the locale used to case status labels.
func WithMarkdownLocale(tag language.Tag) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.caser = titleCaser(tag)
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		caser:      titleCaser(language.English),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)
	view := render.BuildView(report)

	w.writeHeader(md, view.Overview)
	if w.tab == "" {
		w.writeSummary(md, report.Summarize())
	}
	for _, section := range view.Sections {
		if includes(w.tab, section.Tab) {
			w.writeSection(md, section)
		}
	}
	if includes(w.tab, model.TabCode) {
		w.writeCode(md, report.Code)
	}
	w.writeFooter(md, report)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, o render.OverviewView) {
	md.H1("sitescope Report: " + o.Title)
	md.PlainText("")

	rows := [][]string{
		{"URL", "`" + o.URL + "`"},
		{"Last Analyzed", o.LastAnalyzed},
		{"Response Time", o.ResponseTime},
		{"IP Address", o.IPAddress},
	}
	for _, f := range o.Facts {
		rows = append(rows, []string{f.Label, f.Value})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, sum model.Summary) {
	md.H2("Status Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(model.AllStatuses)+1)
	for _, s := range model.AllStatuses {
		if n := sum.ByStatus[s]; n > 0 {
			rows = append(rows, []string{w.caser.String(string(s)), strconv.Itoa(n)})
		}
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(sum.Total) + "**"})
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Items"},
		Rows:   rows,
	})
	md.PlainText("")

	if sum.Total > 0 {
		w.writePieChart(md, sum)
	}

	switch {
	case sum.Negative > 0:
		md.Cautionf("%d item(s) reported an error.", sum.Negative)
	case sum.Caution > 0:
		md.Warningf("%d item(s) need attention.", sum.Caution)
	default:
		md.Tip("No warnings or errors reported.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, sum model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Item Status Distribution"),
		piechart.WithShowData(true),
	)
	tones := []struct {
		tone  model.Tone
		count int
	}{
		{model.TonePositive, sum.Positive},
		{model.ToneCaution, sum.Caution},
		{model.ToneNegative, sum.Negative},
		{model.ToneNeutral, sum.Neutral},
	}
	for _, sl := range tones {
		if sl.count > 0 {
			chart.LabelAndIntValue(w.caser.String(sl.tone.String()), uint64(sl.count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeSection(md *markdown.Markdown, section render.SectionView) {
	md.H2(section.Title)
	md.PlainText("")

	for _, g := range section.Groups {
		md.H3(g.Title)
		md.PlainText("")
		if len(g.Items) == 0 {
			md.PlainText("No items.")
			md.PlainText("")
			continue
		}

		rows := make([][]string, len(g.Items))
		for i, item := range g.Items {
			status := "-"
			if item.Status != "" {
				status = w.caser.String(item.Status)
			}
			detail := itemDetail(item)
			if detail == "" {
				detail = "-"
			}
			rows[i] = []string{item.Name, truncateString(detail, 80), status}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Name", "Details", "Status"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeCode(md *markdown.Markdown, code model.Code) {
	md.H2("Source Code")
	md.PlainText("")
	for _, ct := range model.CodeTypes {
		md.H3(ct.Filename())
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlight(ct.Language()), code.Get(ct))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, report *model.Report) {
	md.HorizontalRule()
	md.PlainText("")
	if report.Digest != "" {
		md.PlainTextf("Digest: `%s`", report.Digest)
		md.PlainText("")
	}
	md.PlainText("*All analysis data is simulated for demonstration purposes.*")
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
