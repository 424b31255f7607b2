package dashboard

import (
	"context"
	"sync"

	actiondomain "github.com/AlibekovAA/cloudrun-demo/internal/action/domain"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/clock"
	commonerrors "github.com/AlibekovAA/cloudrun-demo/internal/common/errors"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
	userdomain "github.com/AlibekovAA/cloudrun-demo/internal/user/domain"
	userhttp "github.com/AlibekovAA/cloudrun-demo/internal/user/http"
	userservice "github.com/AlibekovAA/cloudrun-demo/internal/user/service"
)

const (
	MessageAddUserFieldsRequired = "Name and email are required"
	MessageAddUserFailed         = "Failed to add user"
)

type UserService interface {
	List(ctx context.Context) (userdomain.ListResult, error)
	Create(ctx context.Context, in userservice.CreateInput) (userdomain.CreateResult, error)
}

type ActionService interface {
	ProcessFormData(ctx context.Context, in actiondomain.FormInput) actiondomain.Result
	GenerateReport(ctx context.Context) actiondomain.Result
}

// State is everything the dashboard renders. ServerInfo and ActionResult
// stay nil until something fills them.
type State struct {
	Users        []userdomain.User
	ServerInfo   *userdomain.ServerInfo
	ActionResult *actiondomain.Result
	Loading      bool
	AddingUser   bool
	IsPending    bool
	ShowAddForm  bool
}

// Observer sees a copy of the state after every change.
type Observer func(State)

type Controller struct {
	users    UserService
	actions  ActionService
	clock    clock.Clock
	log      *logger.Logger
	observer Observer

	mu    sync.Mutex
	state State
}

func NewController(users UserService, actions ActionService, clk clock.Clock, log *logger.Logger, observer Observer) *Controller {
	return &Controller{
		users:    users,
		actions:  actions,
		clock:    clk,
		log:      log,
		observer: observer,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() State {
	s := c.state
	if c.state.Users != nil {
		s.Users = append([]userdomain.User(nil), c.state.Users...)
	}
	return s
}

func (c *Controller) update(fn func(*State)) {
	c.mu.Lock()
	fn(&c.state)
	s := c.snapshot()
	c.mu.Unlock()

	if c.observer != nil {
		c.observer(s)
	}
}

// Restore seeds the controller from state carried between requests.
func (c *Controller) Restore(showAddForm bool, result *actiondomain.Result) {
	c.update(func(s *State) {
		s.ShowAddForm = showAddForm
		s.ActionResult = result
	})
}

// SetUsers fills the users panel without calling the service.
func (c *Controller) SetUsers(list userdomain.ListResult) {
	info := list.ServerInfo
	c.update(func(s *State) {
		s.Users = list.Users
		s.ServerInfo = &info
	})
}

// FetchUsers reloads the users panel. A failure is logged and the previous
// list stays.
func (c *Controller) FetchUsers(ctx context.Context) error {
	c.update(func(s *State) { s.Loading = true })
	defer c.update(func(s *State) { s.Loading = false })

	list, err := c.users.List(ctx)
	if err != nil {
		c.log.WithFields(ctx, logger.Fields{
			"action": "dashboard_fetch_users",
		}).Errorf("error fetching users: %v", err)
		return err
	}

	c.SetUsers(list)
	return nil
}

// AddUser creates a user. On success the list is reloaded and the add form
// closes.
func (c *Controller) AddUser(ctx context.Context, name, email string) {
	if name == "" || email == "" {
		c.setResult(actiondomain.Result{
			Success:   false,
			Message:   MessageAddUserFieldsRequired,
			Timestamp: clock.FormatISO(c.clock.Now()),
		})
		return
	}

	c.update(func(s *State) { s.AddingUser = true })
	defer c.update(func(s *State) { s.AddingUser = false })

	created, err := c.users.Create(ctx, userservice.CreateInput{Name: name, Email: email})
	if err != nil {
		c.setResult(actiondomain.Result{
			Success:   false,
			Message:   addUserFailureMessage(err),
			Timestamp: clock.FormatISO(c.clock.Now()),
		})
		return
	}

	dto := userhttp.ToUserDTO(created.User)
	c.setResult(actiondomain.Result{
		Success: true,
		Message: created.Message,
		Data: map[string]any{
			"id":        dto.ID,
			"name":      dto.Name,
			"email":     dto.Email,
			"createdAt": dto.CreatedAt,
		},
		Timestamp: clock.FormatISO(c.clock.Now()),
	})

	_ = c.FetchUsers(ctx)
	c.update(func(s *State) { s.ShowAddForm = false })
}

func addUserFailureMessage(err error) string {
	if de, ok := commonerrors.AsDomainError(err); ok {
		return de.Message()
	}
	return MessageAddUserFailed
}

func (c *Controller) SubmitForm(ctx context.Context, in actiondomain.FormInput) {
	c.update(func(s *State) { s.IsPending = true })
	defer c.update(func(s *State) { s.IsPending = false })

	c.setResult(c.actions.ProcessFormData(ctx, in))
}

func (c *Controller) GenerateReport(ctx context.Context) {
	c.update(func(s *State) { s.IsPending = true })
	defer c.update(func(s *State) { s.IsPending = false })

	c.setResult(c.actions.GenerateReport(ctx))
}

func (c *Controller) ToggleAddForm() {
	c.update(func(s *State) { s.ShowAddForm = !s.ShowAddForm })
}

func (c *Controller) setResult(r actiondomain.Result) {
	c.update(func(s *State) { s.ActionResult = &r })
}
