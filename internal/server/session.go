package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/sitescope/internal/app"
	"github.com/nao1215/sitescope/internal/codepanel"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "sitescope_session"

// session is the UI state of one browser. The app of a session writes
// copied text and downloaded files back into the session, so mu must be
// held while dispatching.
type session struct {
	mu    sync.Mutex
	app   *app.App
	state app.State

	// clipboard holds copied text until the next page view hands it to
	// the browser clipboard.
	clipboard string

	// download holds the file produced by the last download event.
	download *codepanel.File

	lastSeen time.Time
}

// WriteText implements codepanel.Clipboard.
func (s *session) WriteText(_ context.Context, text string) error {
	s.clipboard = text
	return nil
}

// Save implements codepanel.Sink.
func (s *session) Save(_ context.Context, file codepanel.File) error {
	s.download = &file
	return nil
}

// dispatch applies e under the session lock.
func (s *session) dispatch(ctx context.Context, e app.Event) (app.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(ctx, e)
}

func (s *session) dispatchLocked(ctx context.Context, e app.Event) (app.State, error) {
	next, err := s.app.Dispatch(ctx, s.state, e)
	s.state = next
	s.lastSeen = time.Now()
	return next, err
}

// sessions is the set of live sessions.
type sessions struct {
	mu    sync.Mutex
	byID  map[string]*session
	newID func() string
}

func newSessions() *sessions {
	return &sessions{
		byID:  make(map[string]*session),
		newID: uuid.NewString,
	}
}

// get returns the session of the request, creating one and setting its
// cookie when the request has none or an unknown one.
func (ss *sessions) get(w http.ResponseWriter, r *http.Request, base *app.App) *session {
	if c, err := r.Cookie(SessionCookie); err == nil {
		ss.mu.Lock()
		sess, ok := ss.byID[c.Value]
		ss.mu.Unlock()
		if ok {
			return sess
		}
	}

	sess := &session{state: app.NewState(), lastSeen: time.Now()}
	sess.app = base.WithEnv(app.Env{
		Clipboard: sess,
		Sink:      sess,
		Recorder:  base.Env().Recorder,
		Logger:    base.Env().Logger,
	})

	id := ss.newID()
	ss.mu.Lock()
	ss.byID[id] = sess
	ss.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// expire drops sessions idle for longer than ttl and returns how many
// were dropped.
func (ss *sessions) expire(now time.Time, ttl time.Duration) int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	n := 0
	for id, sess := range ss.byID {
		sess.mu.Lock()
		idle := now.Sub(sess.lastSeen)
		loading := sess.state.Running
		sess.mu.Unlock()
		if idle > ttl && !loading {
			delete(ss.byID, id)
			n++
		}
	}
	return n
}

func (ss *sessions) len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.byID)
}
