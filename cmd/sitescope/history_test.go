package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitescope/internal/database"
	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/synth"
)

var historyBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// seedHistory saves one report per entry of urls, an hour apart, and
// returns the history directory and the saved ids.
func seedHistory(t *testing.T, urls ...string) (string, []int64) {
	t.Helper()

	dir := t.TempDir()
	store, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ids := make([]int64, 0, len(urls))
	for i, raw := range urls {
		at := historyBase.Add(time.Duration(i) * time.Hour)
		s := synth.New(synth.WithClock(func() time.Time { return at }))
		rep, err := s.Synthesize(model.MustParseTarget(raw))
		if err != nil {
			t.Fatal(err)
		}
		id, err := store.Save(context.Background(), rep)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	return dir, ids
}

// runHistory executes "sitescope history" with args against dir.
func runHistory(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"history", "--config", writeConfig(t, ""), "--history", dir}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	want := map[string]bool{"list": false, "runs DOMAIN": false, "show ID|DOMAIN": false, "compare DOMAIN": false}
	for _, sub := range cmd.Commands() {
		want[sub.Use] = true
	}
	for use, found := range want {
		if !found {
			t.Errorf("expected %q subcommand", use)
		}
	}
}

func TestHistoryList(t *testing.T) {
	t.Parallel()

	t.Run("lists domains", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t, "https://example.com", "https://example.org", "https://example.com/about")
		out, err := runHistory(t, dir, "list")
		if err != nil {
			t.Fatalf("history list = %v", err)
		}
		if !strings.Contains(out, "Analyzed domains (2)") {
			t.Errorf("unexpected output:\n%s", out)
		}
		for _, domain := range []string{"• example.com", "• example.org"} {
			if !strings.Contains(out, domain) {
				t.Errorf("expected %q in output:\n%s", domain, out)
			}
		}
	})

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		out, err := runHistory(t, dir, "list")
		if err != nil {
			t.Fatalf("history list = %v", err)
		}
		if !strings.Contains(out, "No saved reports.") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("missing database", func(t *testing.T) {
		t.Parallel()

		_, err := runHistory(t, t.TempDir(), "list")
		if !errors.Is(err, database.ErrDatabaseMissing) {
			t.Fatalf("expected ErrDatabaseMissing, got %v", err)
		}
		if !strings.Contains(err.Error(), "no history yet") {
			t.Errorf("unexpected message: %v", err)
		}
	})
}

func TestHistoryRuns(t *testing.T) {
	t.Parallel()

	dir, ids := seedHistory(t, "https://example.com", "https://example.com")
	out, err := runHistory(t, dir, "runs", "example.com")
	if err != nil {
		t.Fatalf("history runs = %v", err)
	}
	if !strings.Contains(out, "Saved runs for example.com (2)") {
		t.Errorf("unexpected output:\n%s", out)
	}
	for _, id := range ids {
		if !strings.Contains(out, strconv.FormatInt(id, 10)) {
			t.Errorf("expected id %d in output:\n%s", id, out)
		}
	}
	if !strings.Contains(out, historyBase.Format(historyTimeLayout)) {
		t.Errorf("expected run date in output:\n%s", out)
	}
	if !strings.Contains(out, "total:") {
		t.Errorf("expected summary in output:\n%s", out)
	}

	out, err = runHistory(t, dir, "runs", "unknown.example")
	if err != nil {
		t.Fatalf("history runs = %v", err)
	}
	if !strings.Contains(out, "No saved runs for unknown.example") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestHistoryShow(t *testing.T) {
	t.Parallel()

	dir, ids := seedHistory(t, "https://example.com", "https://example.org")

	t.Run("by id", func(t *testing.T) {
		t.Parallel()

		out, err := runHistory(t, dir, "show", "-f", "json", strconv.FormatInt(ids[1], 10))
		if err != nil {
			t.Fatalf("history show = %v", err)
		}
		reports := decodeReports(t, out)
		if len(reports) != 1 || reports[0].Report.Overview.Domain != "example.org" {
			t.Errorf("unexpected report:\n%s", out)
		}
	})

	t.Run("latest of a domain", func(t *testing.T) {
		t.Parallel()

		out, err := runHistory(t, dir, "show", "--tab", "security", "example.com")
		if err != nil {
			t.Fatalf("history show = %v", err)
		}
		if !strings.Contains(out, "SECURITY") || !strings.Contains(out, "example.com") {
			t.Errorf("unexpected report:\n%s", out)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()

		if _, err := runHistory(t, dir, "show", "404"); err == nil || !strings.Contains(err.Error(), "no saved report") {
			t.Errorf("expected no saved report error, got %v", err)
		}
	})
}

func TestHistoryCompare(t *testing.T) {
	t.Parallel()

	t.Run("identical runs", func(t *testing.T) {
		t.Parallel()

		dir, ids := seedHistory(t, "https://example.com", "https://example.com")
		out, err := runHistory(t, dir, "compare", "example.com")
		if err != nil {
			t.Fatalf("history compare = %v", err)
		}
		if !strings.Contains(out, "Report Comparison: example.com") || !strings.Contains(out, "No changes.") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if !strings.Contains(out, "#"+strconv.FormatInt(ids[0], 10)) {
			t.Errorf("expected previous run id in output:\n%s", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t, "https://example.com", "https://example.com")
		out, err := runHistory(t, dir, "compare", "-j", "example.com")
		if err != nil {
			t.Fatalf("history compare = %v", err)
		}
		var cmp database.Comparison
		if err := json.Unmarshal([]byte(out), &cmp); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if !cmp.Newer.AnalyzedAt.After(cmp.Older.AnalyzedAt) {
			t.Error("older and newer are swapped")
		}
	})

	t.Run("single run", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t, "https://example.com")
		if _, err := runHistory(t, dir, "compare", "example.com"); !errors.Is(err, database.ErrNotEnoughHistory) {
			t.Errorf("expected ErrNotEnoughHistory, got %v", err)
		}
	})
}

func TestOutputComparisonText(t *testing.T) {
	t.Parallel()

	before := &model.Item{Name: "HSTS", Status: model.StatusGood}
	after := &model.Item{Name: "HSTS", Status: model.StatusWarning}
	cmp := &database.Comparison{
		Older: database.Metadata{ID: 1, AnalyzedAt: historyBase},
		Newer: database.Metadata{ID: 2, AnalyzedAt: historyBase.Add(time.Hour)},
		Changes: []database.Change{
			{Tab: model.TabSecurity, Key: "headers", Name: "HSTS", Kind: database.ChangeUpdated, Before: before, After: after},
			{Tab: model.TabSecurity, Key: "headers", Name: "COOP", Kind: database.ChangeAdded, After: &model.Item{Name: "COOP"}},
			{Tab: model.TabAssets, Key: "images", Name: "logo.png", Kind: database.ChangeRemoved, Before: &model.Item{Name: "logo.png"}},
		},
	}

	var buf bytes.Buffer
	outputComparisonText(&buf, "example.com", cmp)
	out := buf.String()

	for _, want := range []string{
		"Changes (3):",
		"[~] Security / headers: HSTS (" + string(model.StatusGood) + " -> " + string(model.StatusWarning) + ")",
		"[+] Security / headers: COOP",
		"[-] Assets / images: logo.png",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	if got := formatSummary(model.Summary{}); got != "N/A" {
		t.Errorf("formatSummary(empty) = %q", got)
	}
	got := formatSummary(model.Summary{Total: 5, Positive: 2, Caution: 1, Negative: 1, Neutral: 1})
	if got != "total:5 ok:2 warn:1 err:1 info:1" {
		t.Errorf("formatSummary() = %q", got)
	}
}
