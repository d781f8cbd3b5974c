package synth

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"github.com/nao1215/sitescope/internal/model"
)

// ErrSynthesisFailure is returned when report generation fails unexpectedly.
// Callers show a generic "analysis failed" message for it.
var ErrSynthesisFailure = errors.New("report synthesis failed")

//go:embed templates/*.tmpl
var templateFS embed.FS

// sectionGenerator builds one section from the hostname.
type sectionGenerator struct {
	tab   model.ResultTab
	build func(domain string) model.Section
}

// defaultGenerators returns the section generators in report order.
func defaultGenerators() []sectionGenerator {
	return []sectionGenerator{
		{model.TabTechnology, technologySection},
		{model.TabServer, serverSection},
		{model.TabSecurity, securitySection},
		{model.TabPerformance, performanceSection},
		{model.TabSEO, seoSection},
		{model.TabAPIs, apisSection},
		{model.TabAssets, assetsSection},
	}
}

// Synthesizer produces placeholder reports from a validated target.
// Apart from the "last analyzed" timestamp, the report content depends only
// on the hostname, so two calls for the same host differ only in time.
type Synthesizer struct {
	now        func() time.Time
	logger     *slog.Logger
	templates  *template.Template
	generators []sectionGenerator
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithClock sets the function used for the "last analyzed" timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		s.logger = logger
	}
}

// New creates a Synthesizer.
// The embedded code templates are parsed once here; they are part of the
// binary, so a parse failure is a programming error and panics.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		now:        time.Now,
		logger:     slog.Default(),
		templates:  template.Must(template.ParseFS(templateFS, "templates/*.tmpl")),
		generators: defaultGenerators(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// codeData is passed to the source sample templates.
type codeData struct {
	Domain string
	URL    string
	Year   int
}

// Synthesize builds the full report for target.
// Panics raised while generating sections are recovered and returned as
// ErrSynthesisFailure so a single bad generator never takes down the caller.
func (s *Synthesizer) Synthesize(target model.Target) (report *model.Report, err error) {
	if target.IsZero() {
		return nil, fmt.Errorf("%w: target was not parsed", ErrSynthesisFailure)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic during synthesis",
				"target", target.String(),
				"panic", r,
			)
			report = nil
			err = fmt.Errorf("%w: %v", ErrSynthesisFailure, r)
		}
	}()

	domain := target.Hostname()
	now := s.now()

	report = &model.Report{
		Overview: overview(target, now),
	}
	for _, g := range s.generators {
		if err := assign(report, g.tab, g.build(domain)); err != nil {
			return nil, err
		}
	}

	report.Code, err = s.code(codeData{Domain: domain, URL: target.URL(), Year: now.Year()})
	if err != nil {
		return nil, err
	}
	report.ComputeDigest()

	if err := report.CheckShape(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesisFailure, err)
	}

	s.logger.Debug("report synthesized",
		"domain", domain,
		"digest", report.Digest,
	)
	return report, nil
}

// assign stores a generated section in its report field.
func assign(report *model.Report, tab model.ResultTab, section model.Section) error {
	switch tab {
	case model.TabTechnology:
		report.Technology = section
	case model.TabServer:
		report.Server = section
	case model.TabSecurity:
		report.Security = section
	case model.TabPerformance:
		report.Performance = section
	case model.TabSEO:
		report.SEO = section
	case model.TabAPIs:
		report.APIs = section
	case model.TabAssets:
		report.Assets = section
	default:
		return fmt.Errorf("%w: no section for tab %q", ErrSynthesisFailure, tab)
	}
	return nil
}

// code renders the three source samples.
func (s *Synthesizer) code(data codeData) (model.Code, error) {
	render := func(name string) (string, error) {
		var buf bytes.Buffer
		if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
			return "", fmt.Errorf("%w: render %s: %w", ErrSynthesisFailure, name, err)
		}
		return buf.String(), nil
	}

	var (
		code model.Code
		err  error
	)
	if code.HTML, err = render("index.html.tmpl"); err != nil {
		return model.Code{}, err
	}
	if code.CSS, err = render("styles.css.tmpl"); err != nil {
		return model.Code{}, err
	}
	if code.JS, err = render("script.js.tmpl"); err != nil {
		return model.Code{}, err
	}
	return code, nil
}
