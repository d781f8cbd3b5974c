package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nao1215/sitescope/internal/app"
	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/render"
)

// Defaults for the server options.
const (
	DefaultRefresh         = 1
	DefaultSessionTTL      = 30 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second
	maxFormBytes           = 64 << 10
)

// Server is the web UI. Create it with New.
type Server struct {
	app      *app.App
	renderer *render.Renderer
	sessions *sessions
	logger   *slog.Logger

	examples        []string
	refresh         int
	version         string
	sessionTTL      time.Duration
	shutdownTimeout time.Duration

	// analyses tracks running analysis goroutines.
	analyses sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithExamples sets the example URLs offered on the page.
func WithExamples(examples ...string) Option {
	return func(s *Server) {
		s.examples = examples
	}
}

// WithRefresh sets the page refresh interval in seconds while an
// analysis runs.
func WithRefresh(seconds int) Option {
	return func(s *Server) {
		if seconds > 0 {
			s.refresh = seconds
		}
	}
}

// WithVersion sets the version reported by the JSON endpoints.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithSessionTTL sets how long an idle session is kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// withSessionIDs replaces the session id generator.
func withSessionIDs(newID func() string) Option {
	return func(s *Server) {
		s.sessions.newID = newID
	}
}

// New creates a Server running analyses with a.
func New(a *app.App, opts ...Option) (*Server, error) {
	s := &Server{
		app:             a,
		sessions:        newSessions(),
		logger:          slog.Default(),
		refresh:         DefaultRefresh,
		version:         "dev",
		sessionTTL:      DefaultSessionTTL,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	r, err := render.New(render.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.renderer = r
	return s, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /retry", s.handleRetry)
	mux.HandleFunc("POST /tabs/{tab}", s.handleTab)
	mux.HandleFunc("POST /code/format", s.handleFormat)
	mux.HandleFunc("POST /code/{type}", s.handleCode)
	mux.HandleFunc("GET /code/copy", s.handleCopy)
	mux.HandleFunc("GET /code/download", s.handleDownload)
	mux.HandleFunc("GET /api/report", s.handleAPIReport)
	mux.HandleFunc("GET /api/state", s.handleAPIState)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.logRequests(mux)
}

// Wait blocks until every running analysis has finished.
func (s *Server) Wait() {
	s.analyses.Wait()
}

// start runs the analysis of the state's target in the background.
// Progress and the result are dispatched into the session as they arrive.
// The run is detached from the request and cannot be cancelled.
func (s *Server) start(ctx context.Context, sess *session, st app.State) {
	ctx = context.WithoutCancel(ctx)
	gen, target := st.Generation, st.Target

	s.analyses.Add(1)
	go func() {
		defer s.analyses.Done()

		done := sess.app.RunAnalysis(ctx, gen, target, func(e app.Event) {
			_, _ = sess.dispatch(ctx, e)
		})
		if _, err := sess.dispatch(ctx, done); err != nil && !errors.Is(err, app.ErrStaleResult) {
			s.logger.Warn("analysis result not applied", "target", target.String(), "error", err)
		}
	}()
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully and waits for running analyses.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		s.expireSessions(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web UI listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		<-janitorDone
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down web UI")
	err := srv.Shutdown(shutdownCtx)
	<-janitorDone

	waited := make(chan struct{})
	go func() {
		s.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-shutdownCtx.Done():
		s.logger.Warn("analyses still running at shutdown")
	}

	if err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (s *Server) expireSessions(ctx context.Context) {
	ticker := time.NewTicker(s.sessionTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.sessions.expire(now, s.sessionTTL); n > 0 {
				s.logger.Debug("sessions expired", "count", n)
			}
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// parseTab accepts any case; unknown values pass through so that the
// handler reports them to the user.
func parseTab(raw string) model.ResultTab {
	if tab, err := model.ParseResultTab(raw); err == nil {
		return tab
	}
	return model.ResultTab(raw)
}

func parseCode(raw string) model.CodeType {
	if code, err := model.ParseCodeType(raw); err == nil {
		return code
	}
	return model.CodeType(raw)
}
