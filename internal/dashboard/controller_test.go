package dashboard

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	actiondomain "github.com/AlibekovAA/cloudrun-demo/internal/action/domain"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/clock"
	commonerrors "github.com/AlibekovAA/cloudrun-demo/internal/common/errors"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
	userdomain "github.com/AlibekovAA/cloudrun-demo/internal/user/domain"
	userservice "github.com/AlibekovAA/cloudrun-demo/internal/user/service"
)

var start = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

type mockUserService struct {
	listFunc   func(ctx context.Context) (userdomain.ListResult, error)
	createFunc func(ctx context.Context, in userservice.CreateInput) (userdomain.CreateResult, error)
	listCalls  int
}

func (m *mockUserService) List(ctx context.Context) (userdomain.ListResult, error) {
	m.listCalls++
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return userdomain.ListResult{}, nil
}

func (m *mockUserService) Create(ctx context.Context, in userservice.CreateInput) (userdomain.CreateResult, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, in)
	}
	return userdomain.CreateResult{}, nil
}

type mockActionService struct {
	processFunc func(ctx context.Context, in actiondomain.FormInput) actiondomain.Result
	reportFunc  func(ctx context.Context) actiondomain.Result
}

func (m *mockActionService) ProcessFormData(ctx context.Context, in actiondomain.FormInput) actiondomain.Result {
	if m.processFunc != nil {
		return m.processFunc(ctx, in)
	}
	return actiondomain.Result{}
}

func (m *mockActionService) GenerateReport(ctx context.Context) actiondomain.Result {
	if m.reportFunc != nil {
		return m.reportFunc(ctx)
	}
	return actiondomain.Result{}
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(&bytes.Buffer{}, "test", "error")
}

func seedList() userdomain.ListResult {
	return userdomain.ListResult{
		Users: []userdomain.User{
			{ID: 1, Name: "Alice", Email: "alice@example.com", CreatedAt: start},
			{ID: 2, Name: "Bob", Email: "bob@example.com", CreatedAt: start},
		},
		ServerInfo: userdomain.ServerInfo{Timestamp: start, Environment: "test", ServerLocation: "Cloud Run", ProcessingTime: "500ms"},
	}
}

func TestController_FetchUsersSetsLoadingWhileInFlight(t *testing.T) {
	var ctrl *Controller
	var during State
	users := &mockUserService{listFunc: func(context.Context) (userdomain.ListResult, error) {
		during = ctrl.State()
		return seedList(), nil
	}}
	ctrl = NewController(users, &mockActionService{}, clock.NewMockClock(start), testLogger(), nil)

	require.NoError(t, ctrl.FetchUsers(context.Background()))

	assert.True(t, during.Loading)
	after := ctrl.State()
	assert.False(t, after.Loading)
	assert.Len(t, after.Users, 2)
	require.NotNil(t, after.ServerInfo)
	assert.Equal(t, "Cloud Run", after.ServerInfo.ServerLocation)
}

func TestController_FetchUsersFailureKeepsPreviousList(t *testing.T) {
	users := &mockUserService{listFunc: func(context.Context) (userdomain.ListResult, error) {
		return userdomain.ListResult{}, errors.New("timeout")
	}}
	ctrl := NewController(users, &mockActionService{}, clock.NewMockClock(start), testLogger(), nil)
	ctrl.SetUsers(seedList())

	assert.Error(t, ctrl.FetchUsers(context.Background()))

	s := ctrl.State()
	assert.Len(t, s.Users, 2)
	assert.False(t, s.Loading)
}

func TestController_AddUserEmptyFieldsSkipsCall(t *testing.T) {
	called := false
	users := &mockUserService{createFunc: func(context.Context, userservice.CreateInput) (userdomain.CreateResult, error) {
		called = true
		return userdomain.CreateResult{}, nil
	}}
	ctrl := NewController(users, &mockActionService{}, clock.NewMockClock(start), testLogger(), nil)

	ctrl.AddUser(context.Background(), "Dana", "")

	assert.False(t, called)
	s := ctrl.State()
	require.NotNil(t, s.ActionResult)
	assert.False(t, s.ActionResult.Success)
	assert.Equal(t, "Name and email are required", s.ActionResult.Message)
	assert.False(t, s.AddingUser)
}

func TestController_AddUserSuccessRefetchesAndClosesForm(t *testing.T) {
	var ctrl *Controller
	var addingDuringCreate bool
	list := seedList()
	users := &mockUserService{
		createFunc: func(_ context.Context, in userservice.CreateInput) (userdomain.CreateResult, error) {
			addingDuringCreate = ctrl.State().AddingUser
			u := userdomain.User{ID: 3, Name: in.Name, Email: in.Email, CreatedAt: start}
			list.Users = append(list.Users, u)
			return userdomain.CreateResult{User: u, Message: "User created successfully"}, nil
		},
		listFunc: func(context.Context) (userdomain.ListResult, error) { return list, nil },
	}
	ctrl = NewController(users, &mockActionService{}, clock.NewMockClock(start), testLogger(), nil)
	ctrl.Restore(true, nil)

	ctrl.AddUser(context.Background(), "Dana", "dana@example.com")

	assert.True(t, addingDuringCreate)
	assert.Equal(t, 1, users.listCalls)

	s := ctrl.State()
	assert.False(t, s.AddingUser)
	assert.False(t, s.ShowAddForm)
	require.Len(t, s.Users, 3)
	assert.Equal(t, "Dana", s.Users[2].Name)
	require.NotNil(t, s.ActionResult)
	assert.True(t, s.ActionResult.Success)
	assert.Equal(t, "User created successfully", s.ActionResult.Message)
	assert.Equal(t, 3, s.ActionResult.Data["id"])
	assert.Equal(t, "dana@example.com", s.ActionResult.Data["email"])
}

func TestController_AddUserFailureMessages(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		message string
	}{
		{name: "validation", err: userservice.ErrUserFieldsRequired, message: "Name and email are required"},
		{name: "internal", err: commonerrors.ErrInternalError.WithCause(errors.New("store offline")), message: "Internal server error"},
		{name: "circuit open", err: commonerrors.ErrCircuitOpen, message: "circuit breaker is open"},
		{name: "plain", err: errors.New("network"), message: "Failed to add user"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := &mockUserService{createFunc: func(context.Context, userservice.CreateInput) (userdomain.CreateResult, error) {
				return userdomain.CreateResult{}, tc.err
			}}
			ctrl := NewController(users, &mockActionService{}, clock.NewMockClock(start), testLogger(), nil)
			ctrl.Restore(true, nil)

			ctrl.AddUser(context.Background(), "Dana", "dana@example.com")

			s := ctrl.State()
			require.NotNil(t, s.ActionResult)
			assert.False(t, s.ActionResult.Success)
			assert.Equal(t, tc.message, s.ActionResult.Message)
			assert.True(t, s.ShowAddForm)
			assert.Zero(t, users.listCalls)
		})
	}
}

func TestController_SubmitFormAndReportTogglePending(t *testing.T) {
	var ctrl *Controller
	var pending []bool
	actions := &mockActionService{
		processFunc: func(_ context.Context, in actiondomain.FormInput) actiondomain.Result {
			pending = append(pending, ctrl.State().IsPending)
			return actiondomain.Result{Success: true, Message: "Data processed successfully"}
		},
		reportFunc: func(context.Context) actiondomain.Result {
			pending = append(pending, ctrl.State().IsPending)
			return actiondomain.Result{Success: true, Message: "Report generated successfully"}
		},
	}
	ctrl = NewController(&mockUserService{}, actions, clock.NewMockClock(start), testLogger(), nil)

	ctrl.SubmitForm(context.Background(), actiondomain.FormInput{Title: "a", Description: "b"})
	assert.Equal(t, "Data processed successfully", ctrl.State().ActionResult.Message)

	ctrl.GenerateReport(context.Background())
	assert.Equal(t, "Report generated successfully", ctrl.State().ActionResult.Message)

	assert.Equal(t, []bool{true, true}, pending)
	assert.False(t, ctrl.State().IsPending)
}

func TestController_ObserverSeesEveryChange(t *testing.T) {
	var seen []State
	ctrl := NewController(&mockUserService{}, &mockActionService{}, clock.NewMockClock(start), testLogger(), func(s State) {
		seen = append(seen, s)
	})

	ctrl.ToggleAddForm()
	ctrl.ToggleAddForm()

	require.Len(t, seen, 2)
	assert.True(t, seen[0].ShowAddForm)
	assert.False(t, seen[1].ShowAddForm)
}
