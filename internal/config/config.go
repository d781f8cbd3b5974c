package config

import (
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/text/language"

	"github.com/nao1215/sitescope/internal/log"
	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/pipeline"
	"github.com/nao1215/sitescope/internal/report"
)

// Default configuration values.
const (
	// AppName names the XDG directories.
	AppName = "sitescope"

	// DefaultStageDelay is the wait before each progress stage completes.
	DefaultStageDelay = pipeline.DefaultStageDelay

	// DefaultListenAddr binds the web UI to loopback only.
	DefaultListenAddr = "127.0.0.1:8080"

	// DefaultLocale is used for status labels in text and markdown reports.
	DefaultLocale = "en"

	// DefaultConcurrency bounds how many URLs analyze runs at once.
	DefaultConcurrency = pipeline.DefaultConcurrency

	// DefaultFormat is the report format written by analyze.
	DefaultFormat = string(report.FormatText)

	// DefaultShutdownTimeout bounds graceful shutdown of the web UI.
	DefaultShutdownTimeout = 10 * time.Second
)

// DefaultExamples are the URLs offered as example buttons in the web UI.
func DefaultExamples() []string {
	return []string{
		"https://github.com",
		"https://stackoverflow.com",
		"https://www.wikipedia.org",
	}
}

// Config holds every setting of a sitescope run. It is filled from
// NewConfig defaults, then the config file, then command-line flags, and is
// passed explicitly to the components that need it.
type Config struct {
	// StageDelay is the wait spent in each of the five progress stages.
	StageDelay time.Duration

	// Concurrency bounds parallel analyses when several URLs are given.
	Concurrency int

	// Targets are the URLs given to analyze.
	Targets []string

	// Format is the report format: text, markdown, json or html.
	Format string

	// ReportFile receives the report instead of stdout when set.
	ReportFile string

	// Tee also prints a text report to stdout when ReportFile is set.
	Tee bool

	// Tab limits text and markdown output to a single result tab.
	Tab string

	// Code selects the code sample for the code tab, copy and download.
	Code string

	// Locale is a BCP 47 tag used to case status labels.
	Locale string

	// NoColor disables coloured status tags.
	NoColor bool

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is "text" or "json".
	LogFormat string

	// ConfigFilePath is an explicit config file. When empty FindConfigFile
	// searches the default locations.
	ConfigFilePath string

	// SaveHistory stores each report in the history database.
	SaveHistory bool

	// HistoryLocation is a directory for the SQLite database or a
	// postgres:// DSN. Defaults to the XDG data directory.
	HistoryLocation string

	// ListenAddr is the web UI address in host:port form.
	ListenAddr string

	// Examples are the example URLs shown by the web UI.
	Examples []string

	// ShutdownTimeout bounds graceful shutdown of the web UI.
	ShutdownTimeout time.Duration
}

// NewConfig returns a Config holding the default values.
func NewConfig() *Config {
	return &Config{
		StageDelay:      DefaultStageDelay,
		Concurrency:     DefaultConcurrency,
		Format:          DefaultFormat,
		Locale:          DefaultLocale,
		LogFormat:       log.FormatText,
		HistoryLocation: XDGDataDir(),
		ListenAddr:      DefaultListenAddr,
		Examples:        DefaultExamples(),
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// XDGDataDir returns the data directory holding the history database.
// On Linux: ~/.local/share/sitescope
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the directory searched for config.yaml.
// On Linux: ~/.config/sitescope
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.StageDelay < 0 {
		return ErrInvalidStageDelay
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		return wrap(ErrInvalidFormat, err)
	}
	if c.Tab != "" {
		if _, err := model.ParseResultTab(c.Tab); err != nil {
			return wrap(ErrInvalidTab, err)
		}
	}
	if c.Code != "" {
		if _, err := model.ParseCodeType(c.Code); err != nil {
			return wrap(ErrInvalidCode, err)
		}
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return wrap(ErrInvalidLocale, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", log.FormatText, log.FormatJSON:
	default:
		return ErrInvalidLogFormat
	}
	if c.SaveHistory && strings.TrimSpace(c.HistoryLocation) == "" {
		return ErrNoHistoryLocation
	}
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return wrap(ErrInvalidListenAddr, err)
	}
	for _, example := range c.Examples {
		if _, err := model.ParseTarget(example); err != nil {
			return wrap(ErrInvalidExample, err)
		}
	}
	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}
	return nil
}

// LocaleTag returns the parsed locale, or English when it does not parse.
func (c *Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// ReportFormat returns the parsed report format, text when invalid.
func (c *Config) ReportFormat() report.Format {
	f, err := report.ParseFormat(c.Format)
	if err != nil {
		return report.FormatText
	}
	return f
}

// ResultTab returns the selected tab, or "" for all tabs.
func (c *Config) ResultTab() model.ResultTab {
	tab, _ := model.ParseResultTab(c.Tab)
	return tab
}

// CodeType returns the selected code sample, html by default.
func (c *Config) CodeType() model.CodeType {
	code, err := model.ParseCodeType(c.Code)
	if err != nil {
		return model.CodeHTML
	}
	return code
}
