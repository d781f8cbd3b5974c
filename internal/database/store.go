package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sitescope/internal/model"
)

// FileName is the name of the SQLite database inside its directory.
const FileName = "sitescope.db"

// dialect selects SQL differences between the backends.
type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Store provides report history storage.
// It is safe for concurrent use.
type Store struct {
	db       *sql.DB
	dialect  dialect
	location string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the SQLite directory and file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for SQLite.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// IsPostgresDSN reports whether location names a PostgreSQL database.
func IsPostgresDSN(location string) bool {
	return strings.HasPrefix(location, "postgres://") || strings.HasPrefix(location, "postgresql://")
}

// OpenLocation opens a PostgreSQL store for a postgres:// DSN and a SQLite
// store in directory location otherwise.
func OpenLocation(ctx context.Context, location string, opts Options) (*Store, error) {
	if IsPostgresDSN(location) {
		return OpenPostgres(ctx, location)
	}
	return Open(location, opts)
}

// Open opens or creates a SQLite store in dbDir.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDatabaseMissing, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dialect: dialectSQLite, location: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// OpenPostgres opens a PostgreSQL store.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, dialect: dialectPostgres, location: redactDSN(dsn)}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Location returns the database file path, or the DSN without password.
func (s *Store) Location() string {
	return s.location
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	id := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.dialect == dialectPostgres {
		id = "id BIGSERIAL PRIMARY KEY"
	}

	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		` + id + `,
		domain TEXT NOT NULL,
		url TEXT NOT NULL,
		analyzed_at TEXT NOT NULL,
		digest TEXT NOT NULL,
		report_json TEXT NOT NULL,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_domain ON reports(domain);
	CREATE INDEX IF NOT EXISTS idx_reports_analyzed_at ON reports(analyzed_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// rebind rewrites "?" placeholders to "$n" for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// storedTimeLayout sorts lexicographically in time order.
const storedTimeLayout = "2006-01-02 15:04:05.000000000"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

// Metadata describes a stored report without loading it.
type Metadata struct {
	ID         int64         `json:"id"`
	Domain     string        `json:"domain"`
	URL        string        `json:"url"`
	AnalyzedAt time.Time     `json:"analyzed_at"`
	Digest     string        `json:"digest"`
	Summary    model.Summary `json:"summary"`
}

// Save stores report and returns its id. Saving a report that is already
// stored (same domain, digest and analysis time) returns the existing id.
func (s *Store) Save(ctx context.Context, report *model.Report) (int64, error) {
	if report.Digest == "" {
		report.ComputeDigest()
	}
	analyzedAt := formatTimestamp(report.Overview.LastAnalyzed)

	var existing int64
	err := s.db.QueryRowContext(ctx, s.rebind(`
	SELECT id FROM reports
	WHERE domain = ? AND digest = ? AND analyzed_at = ?
	`), report.Overview.Domain, report.Digest, analyzedAt).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to check for duplicate report: %w", err)
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	summaryJSON, err := json.Marshal(report.Summarize())
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, s.rebind(`
	INSERT INTO reports (domain, url, analyzed_at, digest, report_json, summary_json)
	VALUES (?, ?, ?, ?, ?, ?)
	RETURNING id
	`),
		report.Overview.Domain,
		report.Overview.URL,
		analyzedAt,
		report.Digest,
		string(reportJSON),
		string(summaryJSON),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}
	return id, nil
}

// Record saves report, discarding the id.
func (s *Store) Record(ctx context.Context, report *model.Report) error {
	_, err := s.Save(ctx, report)
	return err
}

// ListDomains returns every domain with at least one stored report.
func (s *Store) ListDomains(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT domain FROM reports ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}
	return domains, rows.Err()
}

// History returns the metadata of every report for domain, newest first.
func (s *Store) History(ctx context.Context, domain string) ([]Metadata, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
	SELECT id, domain, url, analyzed_at, digest, summary_json
	FROM reports
	WHERE domain = ?
	ORDER BY analyzed_at DESC, id DESC
	`), domain)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []Metadata
	for rows.Next() {
		var meta Metadata
		var analyzedAt, summaryJSON string
		if err := rows.Scan(&meta.ID, &meta.Domain, &meta.URL, &analyzedAt, &meta.Digest, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.AnalyzedAt = parseTimestamp(analyzedAt)
		if err := json.Unmarshal([]byte(summaryJSON), &meta.Summary); err != nil {
			meta.Summary = model.Summary{ByStatus: map[model.Status]int{}}
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

// Latest returns the newest report for domain.
func (s *Store) Latest(ctx context.Context, domain string) (*model.Report, error) {
	return s.queryReport(ctx, `
	SELECT report_json FROM reports
	WHERE domain = ?
	ORDER BY analyzed_at DESC, id DESC
	LIMIT 1
	`, domain)
}

// Get returns the report with the given id.
func (s *Store) Get(ctx context.Context, id int64) (*model.Report, error) {
	return s.queryReport(ctx, `SELECT report_json FROM reports WHERE id = ?`, id)
}

func (s *Store) queryReport(ctx context.Context, query string, args ...any) (*model.Report, error) {
	var reportJSON string
	err := s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// Compare diffs the two newest reports of domain.
func (s *Store) Compare(ctx context.Context, domain string) (*Comparison, error) {
	history, err := s.History(ctx, domain)
	if err != nil {
		return nil, err
	}
	if len(history) < 2 {
		return nil, fmt.Errorf("%w: %s has %d", ErrNotEnoughHistory, domain, len(history))
	}

	newer, err := s.Get(ctx, history[0].ID)
	if err != nil {
		return nil, err
	}
	older, err := s.Get(ctx, history[1].ID)
	if err != nil {
		return nil, err
	}
	return &Comparison{
		Older:   history[1],
		Newer:   history[0],
		Changes: Diff(older, newer),
	}, nil
}

// timestampFormats lists the layouts a stored timestamp may use.
var timestampFormats = []string{
	storedTimeLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp parses a stored timestamp as UTC; unknown layouts yield
// the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// redactDSN masks the password of a URL-style DSN.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "postgres"
	}
	return u.Redacted()
}
