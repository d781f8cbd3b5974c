package server

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/nao1215/sitescope/internal/app"
	"github.com/nao1215/sitescope/internal/pipeline"
	"github.com/nao1215/sitescope/internal/render"
	"github.com/nao1215/sitescope/internal/report"
)

// handleIndex renders the page for the session state. A pending
// notification and staged clipboard text are shown once.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r, s.app)

	sess.mu.Lock()
	st := sess.state
	clip := sess.clipboard
	sess.clipboard = ""
	if st.Notification != nil {
		_, _ = sess.dispatchLocked(r.Context(), app.Event{Kind: app.EventDismiss})
	}
	sess.mu.Unlock()

	data, err := s.pageData(st)
	if err != nil {
		s.fail(w, "failed to build page", err)
		return
	}
	data.ClipboardText = clip

	var buf bytes.Buffer
	if err := s.renderer.RenderPage(&buf, data); err != nil {
		s.fail(w, "failed to render page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) pageData(st app.State) (render.PageData, error) {
	data := render.PageData{
		Title:       "sitescope",
		Input:       st.Input,
		Phase:       string(st.Phase),
		Message:     st.Message,
		ActiveTab:   string(st.Tabs.Active()),
		Tabs:        render.TabViews(st.Tabs),
		CodeTabs:    render.TabViews(st.CodeTabs),
		Examples:    s.examples,
		Interactive: true,
		Containers:  render.Containers{},
	}
	if n := st.Notification; n != nil {
		data.Notice = &render.Notice{Kind: string(n.Kind), Text: n.Message}
	}

	switch st.Phase {
	case app.PhaseLoading:
		data.Stages = stageViews(st.Progress)
		data.RefreshSeconds = s.refresh
	case app.PhaseResults:
		if st.Report == nil {
			break
		}
		data.Title = "sitescope - " + st.Report.Overview.Domain
		data.View = render.BuildView(st.Report)
		if err := s.renderer.RenderView(data.View, data.Containers); err != nil {
			return data, err
		}
		s.renderer.RenderCode(st.Code, data.Containers)
	}
	return data, nil
}

// stageViews numbers the stages from 1 and marks the active and finished ones.
func stageViews(p pipeline.Progress) []render.StageView {
	views := make([]render.StageView, 0, len(pipeline.Stages))
	for i, stage := range pipeline.Stages {
		views = append(views, render.StageView{
			Number: i + 1,
			Label:  stage.Label(),
			Active: p.Active == stage,
			Done:   i < p.Completed,
		})
	}
	return views
}

// handleAnalyze validates the submitted URL and starts the analysis.
// Invalid input is shown inline on the page.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.submit(w, r, app.Submit(r.PostFormValue("url")))
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, app.Event{Kind: app.EventRetry})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, e app.Event) {
	sess := s.sessions.get(w, r, s.app)

	sess.mu.Lock()
	st, err := sess.dispatchLocked(r.Context(), e)
	sess.mu.Unlock()

	if err == nil && st.Phase == app.PhaseLoading {
		s.start(r.Context(), sess, st)
	}
	redirectHome(w, r)
}

func (s *Server) handleTab(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r, s.app)
	_, _ = sess.dispatch(r.Context(), app.SelectTab(parseTab(r.PathValue("tab"))))
	redirectHome(w, r)
}

func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r, s.app)
	_, _ = sess.dispatch(r.Context(), app.SelectCode(parseCode(r.PathValue("type"))))
	redirectHome(w, r)
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r, s.app)
	_, _ = sess.dispatch(r.Context(), app.Event{Kind: app.EventFormat})
	redirectHome(w, r)
}

// handleCopy stages the displayed code for the browser clipboard; the
// next page view writes it with navigator.clipboard.
func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r, s.app)
	_, _ = sess.dispatch(r.Context(), app.Event{Kind: app.EventCopy})
	redirectHome(w, r)
}

// handleDownload sends the displayed code as an attachment. Without a
// report it redirects to the page, which shows why.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r, s.app)

	sess.mu.Lock()
	sess.download = nil
	_, err := sess.dispatchLocked(r.Context(), app.Event{Kind: app.EventDownload})
	file := sess.download
	sess.download = nil
	// The browser stays on the page, so the notification would only
	// appear on a later view.
	if err == nil {
		_, _ = sess.dispatchLocked(r.Context(), app.Event{Kind: app.EventDismiss})
	}
	sess.mu.Unlock()

	if err != nil || file == nil {
		redirectHome(w, r)
		return
	}

	w.Header().Set("Content-Type", mime.FormatMediaType(file.MIMEType, map[string]string{"charset": "utf-8"}))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	_, _ = w.Write([]byte(file.Content))
}

// handleAPIReport returns the session report as JSON with its digest as
// ETag.
func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r, s.app)
	sess.mu.Lock()
	rep := sess.state.Report
	sess.mu.Unlock()

	if rep == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": ErrNoReport.Error()})
		return
	}

	etag := strconv.Quote(rep.Digest)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	var buf bytes.Buffer
	if _, err := report.NewFullJSONWriter(&buf, s.version, report.WithPrettyPrint()).Write(rep); err != nil {
		s.fail(w, "failed to encode report", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleAPIState(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r, s.app)
	sess.mu.Lock()
	snap := sess.state.Snapshot()
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
