package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/clock"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/constants"
	commonerrors "github.com/AlibekovAA/cloudrun-demo/internal/common/errors"
	commonhttp "github.com/AlibekovAA/cloudrun-demo/internal/common/http"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
	userdomain "github.com/AlibekovAA/cloudrun-demo/internal/user/domain"
	"github.com/AlibekovAA/cloudrun-demo/internal/viewcache"
)

type Config struct {
	CacheTTL time.Duration
}

// PanelWriter caches the users panel without undoing an invalidation that
// happened while the panel was being fetched.
type PanelWriter interface {
	Generation(key string) uint64
	StoreIfCurrent(ctx context.Context, key string, gen uint64, value []byte, ttl time.Duration) (bool, error)
}

type Handler struct {
	users    UserService
	actions  ActionService
	cache    viewcache.Store
	panels   PanelWriter
	sessions sessions.Store
	renderer *Renderer
	clock    clock.Clock
	log      *logger.Logger
	errors   *commonhttp.ErrorHandler
	cfg      Config

	// Observer, when set, is attached to every controller the handler builds.
	Observer Observer
}

func NewHandler(
	users UserService,
	actions ActionService,
	cache viewcache.Store,
	panels PanelWriter,
	store sessions.Store,
	renderer *Renderer,
	clk clock.Clock,
	log *logger.Logger,
	cfg Config,
) *Handler {
	return &Handler{
		users:    users,
		actions:  actions,
		cache:    cache,
		panels:   panels,
		sessions: store,
		renderer: renderer,
		clock:    clk,
		log:      log,
		errors:   commonhttp.NewErrorHandler(log),
		cfg:      cfg,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.landing)
	r.Route(constants.DashboardRoute, func(r chi.Router) {
		r.Get("/", h.show)
		r.Post("/users/fetch", h.fetchUsers)
		r.Post("/users/toggle", h.toggleAddForm)
		r.Post("/users", h.addUser)
		r.Post("/actions/process", h.processForm)
		r.Post("/actions/report", h.generateReport)
	})
}

// usersPanel is the cached part of the dashboard.
type usersPanel struct {
	Users      []userdomain.User     `json:"users"`
	ServerInfo userdomain.ServerInfo `json:"serverInfo"`
}

func (h *Handler) newController(ctx context.Context) *Controller {
	observer := h.Observer
	if observer == nil && h.log.ShouldLog(logger.DEBUG) {
		observer = func(s State) {
			h.log.WithFields(ctx, logger.Fields{
				"loading":       s.Loading,
				"adding_user":   s.AddingUser,
				"is_pending":    s.IsPending,
				"show_add_form": s.ShowAddForm,
				"users":         len(s.Users),
			}).Debug("dashboard state changed")
		}
	}
	return NewController(h.users, h.actions, h.clock, h.log, observer)
}

func (h *Handler) landing(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.renderer.Landing(&buf); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := loadSession(h.sessions, r, h.log)
	bs := sess.state()

	ctrl := h.newController(ctx)
	ctrl.Restore(bs.ShowAddForm, bs.Result)
	if bs.UsersLoaded {
		h.loadUsers(ctx, ctrl)
	}

	var buf bytes.Buffer
	if err := h.renderer.Dashboard(&buf, ctrl.State()); err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	sess.save(w, r)
	writeHTML(w, buf.Bytes())
}

// loadUsers fills the users panel from the view cache, falling back to the
// user service on a miss.
func (h *Handler) loadUsers(ctx context.Context, ctrl *Controller) {
	raw, ok, err := h.cache.Get(ctx, constants.DashboardCacheKey)
	if err != nil {
		h.log.WithFields(ctx, logger.Fields{
			"action": "dashboard_cache_get",
		}).Warnf("view cache unavailable: %v", err)
	}
	if ok {
		var panel usersPanel
		if err := json.Unmarshal(raw, &panel); err == nil {
			ctrl.SetUsers(userdomain.ListResult{Users: panel.Users, ServerInfo: panel.ServerInfo})
			return
		}
		h.log.Warnf("discarding unreadable users panel")
	}

	gen := h.panels.Generation(constants.DashboardCacheKey)
	if err := ctrl.FetchUsers(ctx); err == nil {
		h.storeUsers(ctx, ctrl.State(), gen)
	}
}

func (h *Handler) storeUsers(ctx context.Context, s State, gen uint64) {
	if s.ServerInfo == nil {
		return
	}
	raw, err := json.Marshal(usersPanel{Users: s.Users, ServerInfo: *s.ServerInfo})
	if err != nil {
		h.log.Errorf("failed to encode users panel: %v", err)
		return
	}
	stored, err := h.panels.StoreIfCurrent(ctx, constants.DashboardCacheKey, gen, raw, h.cfg.CacheTTL)
	if err != nil {
		h.log.WithFields(ctx, logger.Fields{
			"action": "dashboard_cache_set",
		}).Warnf("failed to cache users panel: %v", err)
		return
	}
	if !stored {
		h.log.WithFields(ctx, logger.Fields{
			"action": "dashboard_cache_set",
		}).Debug("users panel invalidated during fetch, not cached")
	}
}

func (h *Handler) fetchUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := loadSession(h.sessions, r, h.log)
	bs := sess.state()

	ctrl := h.newController(ctx)
	ctrl.Restore(bs.ShowAddForm, bs.Result)
	gen := h.panels.Generation(constants.DashboardCacheKey)
	if err := ctrl.FetchUsers(ctx); err == nil {
		h.storeUsers(ctx, ctrl.State(), gen)
		sess.setUsersLoaded(true)
	}
	sess.flashResult(bs.Result)

	h.redirect(w, r, sess)
}

func (h *Handler) toggleAddForm(w http.ResponseWriter, r *http.Request) {
	sess := loadSession(h.sessions, r, h.log)
	bs := sess.state()

	ctrl := h.newController(r.Context())
	ctrl.Restore(bs.ShowAddForm, bs.Result)
	ctrl.ToggleAddForm()

	sess.setShowAddForm(ctrl.State().ShowAddForm)
	sess.flashResult(bs.Result)

	h.redirect(w, r, sess)
}

func (h *Handler) addUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := loadSession(h.sessions, r, h.log)
	bs := sess.state()

	form, err := decodeAddUser(r)
	if err != nil {
		h.errors.HandleError(w, r, commonerrors.ErrInvalidForm.WithCause(err))
		return
	}

	ctrl := h.newController(ctx)
	ctrl.Restore(bs.ShowAddForm, nil)
	gen := h.panels.Generation(constants.DashboardCacheKey)
	ctrl.AddUser(ctx, form.Name, form.Email)

	st := ctrl.State()
	if st.ServerInfo != nil {
		h.storeUsers(ctx, st, gen)
		sess.setUsersLoaded(true)
	}
	sess.setShowAddForm(st.ShowAddForm)
	sess.flashResult(st.ActionResult)

	h.redirect(w, r, sess)
}

func (h *Handler) processForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := loadSession(h.sessions, r, h.log)
	bs := sess.state()

	in, err := decodeActionForm(r)
	if err != nil {
		h.errors.HandleError(w, r, commonerrors.ErrInvalidForm.WithCause(err))
		return
	}

	ctrl := h.newController(ctx)
	ctrl.Restore(bs.ShowAddForm, nil)
	ctrl.SubmitForm(ctx, in)

	sess.flashResult(ctrl.State().ActionResult)
	h.redirect(w, r, sess)
}

func (h *Handler) generateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := loadSession(h.sessions, r, h.log)
	bs := sess.state()

	ctrl := h.newController(ctx)
	ctrl.Restore(bs.ShowAddForm, nil)
	ctrl.GenerateReport(ctx)

	sess.flashResult(ctrl.State().ActionResult)
	h.redirect(w, r, sess)
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.save(w, r)
	http.Redirect(w, r, constants.DashboardRoute, http.StatusSeeOther)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
