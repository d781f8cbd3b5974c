package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/language"

	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/synth"
)

// createTestReport synthesizes a report for example.com at a fixed time.
func createTestReport(t *testing.T) *model.Report {
	t.Helper()
	s := synth.New(synth.WithClock(func() time.Time {
		return time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	}))
	report, err := s.Synthesize(model.MustParseTarget("https://example.com"))
	if err != nil {
		t.Fatalf("Synthesize() = %v", err)
	}
	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and every section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"SITESCOPE REPORT",
			"https://example.com/",
			"2026-05-04 10:30:00 UTC",
			"TECHNOLOGY",
			"SERVER",
			"SECURITY",
			"PERFORMANCE",
			"SEO",
			"APIS",
			"ASSETS",
			"Frontend Technologies",
			"SUMMARY",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("status labels are title cased without colour", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithColor(false), WithLocale(language.English))
		if _, err := w.Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "[Detected]") {
			t.Error("expected a [Detected] tag")
		}
		if strings.Contains(buf.String(), "\x1b[") {
			t.Error("unexpected ANSI escape")
		}
	})

	t.Run("colour adds escapes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithColor(true)).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\x1b[") {
			t.Error("expected ANSI escapes")
		}
	})

	t.Run("single tab", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithTab(model.TabSecurity)).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if !strings.Contains(output, "Security Headers") {
			t.Error("expected the security section")
		}
		if strings.Contains(output, "Frontend Technologies") || strings.Contains(output, "SUMMARY") {
			t.Error("unexpected content outside the security tab")
		}
	})

	t.Run("code tab prints the selected sample", func(t *testing.T) {
		t.Parallel()

		report := createTestReport(t)
		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithTab(model.TabCode), WithCode(model.CodeCSS))
		if _, err := w.Write(report); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "styles.css") || !strings.Contains(buf.String(), report.Code.CSS) {
			t.Error("expected the CSS sample")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables chart and code", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# sitescope Report",
			"## Status Summary",
			"```mermaid",
			"pie",
			"### Security Headers",
			"```javascript",
			"### styles.css",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("single tab omits the summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf, WithMarkdownTab(model.TabAssets)).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if strings.Contains(output, "Status Summary") || strings.Contains(output, "Source Code") {
			t.Error("unexpected sections")
		}
		if !strings.Contains(output, "## Assets") {
			t.Error("expected the assets section")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("bare report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport(t)); err != nil {
			t.Fatal(err)
		}
		var got model.Report
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Overview.Domain != "example.com" {
			t.Errorf("Domain = %q", got.Overview.Domain)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("compact output should be a single line")
		}
	})

	t.Run("single tab", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			tab     model.ResultTab
			wantKey string
		}{
			{model.TabOverview, "domain"},
			{model.TabSecurity, "subsections"},
			{model.TabCode, "css"},
		}
		for _, tt := range tests {
			var buf bytes.Buffer
			w := NewFullJSONWriter(&buf, "v1.2.3", WithJSONTab(tt.tab))
			if _, err := w.Write(createTestReport(t)); err != nil {
				t.Fatal(err)
			}
			var got struct {
				Version string                     `json:"version"`
				Tab     model.ResultTab            `json:"tab"`
				Data    map[string]json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
				t.Fatalf("%s: invalid JSON: %v", tt.tab, err)
			}
			if got.Tab != tt.tab || got.Version != "v1.2.3" {
				t.Errorf("%s: tab = %q version = %q", tt.tab, got.Tab, got.Version)
			}
			if _, ok := got.Data[tt.wantKey]; !ok {
				t.Errorf("%s: data has no %q field: %s", tt.tab, tt.wantKey, buf.String())
			}
		}
	})

	t.Run("full report carries version and summary", func(t *testing.T) {
		t.Parallel()

		report := createTestReport(t)
		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "v1.2.3", WithPrettyPrint()).Write(report); err != nil {
			t.Fatal(err)
		}
		var got JSONReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Version != "v1.2.3" {
			t.Errorf("Version = %q", got.Version)
		}
		if got.Summary.Total != report.Summarize().Total {
			t.Errorf("Summary.Total = %d", got.Summary.Total)
		}
		if got.Report.Digest != report.Digest {
			t.Error("digest not preserved")
		}
	})
}

func TestHTMLWriter(t *testing.T) {
	t.Parallel()

	report := createTestReport(t)
	var buf bytes.Buffer
	w, err := NewHTMLWriter(&buf, WithHTMLCode(model.CodeJS))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Find("form").Length() != 0 {
		t.Error("static export must not contain forms")
	}
	if n := doc.Find(".tab-pane.active").Length(); n != len(model.ResultTabs) {
		t.Errorf("active panes = %d, want %d", n, len(model.ResultTabs))
	}
	if got := doc.Find("#source-code").Text(); got != report.Code.JS {
		t.Error("code block does not hold the JS sample")
	}
	if doc.Find("#security-headers .tech-item, #security-headers .security-item").Length() == 0 {
		t.Error("security headers were not rendered")
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	n, err := NewMultiWriter(NewJSONWriter(&a), NewSimpleWriter(&b)).Write(createTestReport(t))
	if err != nil {
		t.Fatal(err)
	}
	if n != a.Len()+b.Len() {
		t.Errorf("n = %d, want %d", n, a.Len()+b.Len())
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"Markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{" json ", FormatJSON, false},
		{"html", FormatHTML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("expected ErrUnknownFormat, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	for _, f := range Formats() {
		t.Run(string(f), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			w, err := NewWriter(f, &buf, Options{Version: "dev"})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := w.Write(createTestReport(t)); err != nil {
				t.Fatal(err)
			}
			if buf.Len() == 0 {
				t.Error("no output")
			}
		})
	}
}
