package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/synth"
)

// setupTestStore creates a temporary SQLite store.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newReport synthesizes a report for rawURL analyzed at the given time.
func newReport(t *testing.T, rawURL string, at time.Time) *model.Report {
	t.Helper()
	s := synth.New(synth.WithClock(func() time.Time { return at }))
	report, err := s.Synthesize(model.MustParseTarget(rawURL))
	if err != nil {
		t.Fatal(err)
	}
	return report
}

var baseTime = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		s, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if s.Location() != filepath.Join(dbDir, FileName) {
			t.Errorf("Location() = %q", s.Location())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{})
		if !errors.Is(err, ErrDatabaseMissing) {
			t.Errorf("expected ErrDatabaseMissing, got %v", err)
		}
	})

	t.Run("reopens an existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Save(context.Background(), newReport(t, "https://example.com", baseTime)); err != nil {
			t.Fatal(err)
		}
		_ = s.Close()

		s, err = Open(dir, Options{EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen: %v", err)
		}
		defer s.Close()
		domains, err := s.ListDomains(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(domains) != 1 || domains[0] != "example.com" {
			t.Errorf("domains = %v", domains)
		}
	})
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := setupTestStore(t)
	report := newReport(t, "https://example.com", baseTime)

	id, err := s.Save(ctx, report)
	if err != nil {
		t.Fatalf("Save() = %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() = %v", err)
	}
	if got.Digest != report.Digest {
		t.Error("digest mismatch")
	}
	if !got.Overview.LastAnalyzed.Equal(baseTime) {
		t.Errorf("LastAnalyzed = %v", got.Overview.LastAnalyzed)
	}
	if err := got.CheckShape(); err != nil {
		t.Errorf("stored report lost its shape: %v", err)
	}

	t.Run("same report is stored once", func(t *testing.T) {
		again, err := s.Save(ctx, report)
		if err != nil {
			t.Fatal(err)
		}
		if again != id {
			t.Errorf("id = %d, want %d", again, id)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, err := s.Get(ctx, id+100); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := setupTestStore(t)
	for i, raw := range []string{"https://example.com", "https://example.com", "https://example.org"} {
		if err := s.Record(ctx, newReport(t, raw, baseTime.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	domains, err := s.ListDomains(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(domains) != 2 || domains[0] != "example.com" || domains[1] != "example.org" {
		t.Errorf("domains = %v", domains)
	}

	history, err := s.History(ctx, "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("got %d entries", len(history))
	}
	if !history[0].AnalyzedAt.After(history[1].AnalyzedAt) {
		t.Error("history is not newest first")
	}
	if history[0].Summary.Total == 0 {
		t.Error("summary not stored")
	}

	latest, err := s.Latest(ctx, "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !latest.Overview.LastAnalyzed.Equal(baseTime.Add(time.Hour)) {
		t.Errorf("latest analyzed at %v", latest.Overview.LastAnalyzed)
	}

	if _, err := s.Latest(ctx, "missing.example"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("needs two runs", func(t *testing.T) {
		t.Parallel()
		s := setupTestStore(t)
		if err := s.Record(ctx, newReport(t, "https://example.com", baseTime)); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Compare(ctx, "example.com"); !errors.Is(err, ErrNotEnoughHistory) {
			t.Errorf("expected ErrNotEnoughHistory, got %v", err)
		}
	})

	t.Run("identical runs have no changes", func(t *testing.T) {
		t.Parallel()
		s := setupTestStore(t)
		for i := range 2 {
			if err := s.Record(ctx, newReport(t, "https://example.com", baseTime.Add(time.Duration(i)*time.Minute))); err != nil {
				t.Fatal(err)
			}
		}
		cmp, err := s.Compare(ctx, "example.com")
		if err != nil {
			t.Fatal(err)
		}
		if len(cmp.Changes) != 0 {
			t.Errorf("unexpected changes: %+v", cmp.Changes)
		}
		if !cmp.Newer.AnalyzedAt.After(cmp.Older.AnalyzedAt) {
			t.Error("older and newer are swapped")
		}
	})
}

func TestDiff(t *testing.T) {
	t.Parallel()

	older := newReport(t, "https://example.com", baseTime)
	newer := newReport(t, "https://example.com", baseTime)

	headers := newer.Security.Subsections[0]
	changed := headers.Items[0]
	changed.Status = model.StatusWarning
	newItems := []model.Item{changed, {Name: "Cross-Origin-Opener-Policy", Status: model.StatusDetected}}
	newItems = append(newItems, headers.Items[2:]...)
	newer.Security.Set(headers.Key, newItems...)

	changes := Diff(older, newer)

	kinds := map[ChangeKind]int{}
	for _, c := range changes {
		kinds[c.Kind]++
		if c.Tab != model.TabSecurity || c.Key != headers.Key {
			t.Errorf("unexpected change location %s/%s", c.Tab, c.Key)
		}
	}
	if kinds[ChangeUpdated] != 1 || kinds[ChangeAdded] != 1 || kinds[ChangeRemoved] != 1 {
		t.Errorf("kinds = %v", kinds)
	}
}

func TestRebindDollar(t *testing.T) {
	t.Parallel()

	got := rebindDollar("SELECT id FROM reports WHERE domain = ? AND digest = ?")
	want := "SELECT id FROM reports WHERE domain = $1 AND digest = $2"
	if got != want {
		t.Errorf("rebindDollar() = %q, want %q", got, want)
	}
}

func TestIsPostgresDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"postgres://user@localhost/sitescope", true},
		{"postgresql://localhost/sitescope", true},
		{"/var/lib/sitescope", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsPostgresDSN(tt.in); got != tt.want {
			t.Errorf("IsPostgresDSN(%q) = %v", tt.in, got)
		}
	}
}

func TestRedactDSN(t *testing.T) {
	t.Parallel()

	got := redactDSN("postgres://scope:secret@db:5432/sitescope?sslmode=disable")
	if got != "postgres://scope:xxxxx@db:5432/sitescope?sslmode=disable" {
		t.Errorf("redactDSN() = %q", got)
	}
}

// TestPostgresStore runs against a real server when
// SITESCOPE_TEST_POSTGRES_DSN is set.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SITESCOPE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SITESCOPE_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	s, err := OpenLocation(ctx, dsn, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	report := newReport(t, "https://pg.example.com", time.Now().UTC())
	id, err := s.Save(ctx, report)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Digest != report.Digest {
		t.Error("digest mismatch")
	}
}
