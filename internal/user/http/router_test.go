package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/clock"
	commonhttp "github.com/AlibekovAA/cloudrun-demo/internal/common/http"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/validation"
	"github.com/AlibekovAA/cloudrun-demo/internal/user/domain"
	"github.com/AlibekovAA/cloudrun-demo/internal/user/repository"
	"github.com/AlibekovAA/cloudrun-demo/internal/user/service"
)

var start = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newRouter(users UserService) http.Handler {
	log := logger.NewWithWriter(&bytes.Buffer{}, "test", "error")
	r := chi.NewRouter()
	r.Route("/api/users", NewHandler(users, log).Routes)
	return r
}

func newRealService() *service.UserService {
	log := logger.NewWithWriter(&bytes.Buffer{}, "test", "error")
	return service.NewUserService(
		repository.NewMemoryRepository(start),
		nil,
		clock.NewMockClock(start),
		validation.New(),
		log,
		service.Config{Environment: "test", ListDelay: 500 * time.Millisecond, CreateDelay: 300 * time.Millisecond},
	)
}

func do(t *testing.T, h http.Handler, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/api/users", nil)
	} else {
		req = httptest.NewRequest(method, "/api/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestList(t *testing.T) {
	h := newRouter(newRealService())

	rec := do(t, h, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Users, 3)
	assert.Equal(t, UserDTO{ID: 1, Name: "Alice", Email: "alice@example.com", CreatedAt: "2026-05-01T09:00:00.000Z"}, resp.Users[0])
	assert.Equal(t, "Cloud Run", resp.ServerInfo.ServerLocation)
	assert.Equal(t, "500ms", resp.ServerInfo.ProcessingTime)
	assert.Equal(t, "2026-05-01T09:00:00.500Z", resp.ServerInfo.Timestamp)
}

func TestCreateThenList(t *testing.T) {
	h := newRouter(newRealService())

	rec := do(t, h, http.MethodPost, `{"name":"Dana","email":"dana@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "User created successfully", created["message"])
	user := created["user"].(map[string]any)
	assert.EqualValues(t, 4, user["id"])
	assert.Equal(t, "Dana", user["name"])
	info := created["serverInfo"].(map[string]any)
	assert.Equal(t, "test", info["environment"])
	assert.NotContains(t, info, "serverLocation")

	rec = do(t, h, http.MethodGet, "")
	var resp ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Users, 4)
	assert.Equal(t, "Dana", resp.Users[3].Name)
}

func TestCreate_MissingEmail(t *testing.T) {
	h := newRouter(newRealService())

	rec := do(t, h, http.MethodPost, `{"name":"Dana"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var env commonhttp.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "Name and email are required", env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)
}

func TestCreate_UndecodableBodyIsInternalError(t *testing.T) {
	h := newRouter(newRealService())

	for _, body := range []string{`{"name":`, `{not json`} {
		rec := do(t, h, http.MethodPost, body)

		assert.Equal(t, http.StatusInternalServerError, rec.Code, body)
		var env commonhttp.ErrorEnvelope
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
		assert.Equal(t, "Internal server error", env.Error)
		assert.Equal(t, "INTERNAL_ERROR", env.Code)
	}
}

func TestCreate_NonStringFields(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		user   string
	}{
		{name: "number name", body: `{"name":5,"email":"e@x"}`, status: http.StatusCreated, user: "5"},
		{name: "true name", body: `{"name":true,"email":"e@x"}`, status: http.StatusCreated, user: "true"},
		{name: "object name", body: `{"name":{"first": "Dana"},"email":"e@x"}`, status: http.StatusCreated, user: `{"first":"Dana"}`},
		{name: "zero name", body: `{"name":0,"email":"e@x"}`, status: http.StatusBadRequest},
		{name: "false email", body: `{"name":"Dana","email":false}`, status: http.StatusBadRequest},
		{name: "null email", body: `{"name":"Dana","email":null}`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newRouter(newRealService())

			rec := do(t, h, http.MethodPost, tt.body)

			require.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusCreated {
				return
			}
			var resp CreateResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.user, resp.User.Name)
			assert.Equal(t, "e@x", resp.User.Email)
		})
	}
}

type failingService struct{}

func (failingService) List(context.Context) (domain.ListResult, error) {
	return domain.ListResult{}, errors.New("store offline")
}

func (failingService) Create(context.Context, service.CreateInput) (domain.CreateResult, error) {
	return domain.CreateResult{}, errors.New("store offline")
}

func TestInternalErrorsHideCause(t *testing.T) {
	h := newRouter(failingService{})

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		body := ""
		if method == http.MethodPost {
			body = `{"name":"Dana","email":"dana@example.com"}`
		}
		rec := do(t, h, method, body)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Internal server error")
		assert.NotContains(t, rec.Body.String(), "store offline")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newRouter(newRealService())

	rec := do(t, h, http.MethodDelete, "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
