package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"

	actiondomain "github.com/AlibekovAA/cloudrun-demo/internal/action/domain"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/constants"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
)

const (
	sessionName     = "dashboard"
	keyShowAddForm  = "show_add_form"
	keyUsersLoaded  = "users_loaded"
	flashResultName = "action_result"
)

// NewSessionStore returns a cookie store for the per-browser dashboard state.
func NewSessionStore(key []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// browserState is what survives the redirect after a POST.
type browserState struct {
	ShowAddForm bool
	UsersLoaded bool
	Result      *actiondomain.Result
}

type session struct {
	sess *sessions.Session
	log  *logger.Logger
}

// loadSession never fails: a cookie that cannot be decoded yields a fresh
// session.
func loadSession(store sessions.Store, r *http.Request, log *logger.Logger) *session {
	sess, err := store.Get(r, sessionName)
	if err != nil {
		log.WithFields(r.Context(), logger.Fields{
			"action": "dashboard_session_decode",
		}).Debugf("discarding unreadable session: %v", err)
	}
	return &session{sess: sess, log: log}
}

// state reads the stored flags and consumes the flashed result.
func (s *session) state() browserState {
	st := browserState{}
	st.ShowAddForm, _ = s.sess.Values[keyShowAddForm].(bool)
	st.UsersLoaded, _ = s.sess.Values[keyUsersLoaded].(bool)

	for _, f := range s.sess.Flashes(flashResultName) {
		raw, ok := f.(string)
		if !ok {
			continue
		}
		var r actiondomain.Result
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			s.log.Warnf("dropping unreadable action result flash: %v", err)
			continue
		}
		st.Result = &r
	}
	return st
}

func (s *session) setShowAddForm(v bool) {
	s.sess.Values[keyShowAddForm] = v
}

func (s *session) setUsersLoaded(v bool) {
	s.sess.Values[keyUsersLoaded] = v
}

// flashResult stores r as JSON so the cookie codec only sees a string.
func (s *session) flashResult(r *actiondomain.Result) {
	if r == nil {
		return
	}
	b, err := json.Marshal(r)
	if err != nil {
		s.log.Errorf("failed to encode action result: %v", err)
		return
	}
	s.sess.AddFlash(string(b), flashResultName)
}

func (s *session) save(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.Save(r, w); err != nil {
		s.log.WithFields(r.Context(), logger.Fields{
			"action": "dashboard_session_save",
		}).Errorf("failed to save session: %v", err)
	}
}
