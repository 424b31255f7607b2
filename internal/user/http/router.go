package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	commonerrors "github.com/AlibekovAA/cloudrun-demo/internal/common/errors"
	commonhttp "github.com/AlibekovAA/cloudrun-demo/internal/common/http"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
	"github.com/AlibekovAA/cloudrun-demo/internal/user/domain"
	"github.com/AlibekovAA/cloudrun-demo/internal/user/service"
)

// UserService is the part of service.UserService the handler needs.
type UserService interface {
	List(ctx context.Context) (domain.ListResult, error)
	Create(ctx context.Context, in service.CreateInput) (domain.CreateResult, error)
}

type Handler struct {
	users  UserService
	errors *commonhttp.ErrorHandler
	log    *logger.Logger
}

func NewHandler(users UserService, log *logger.Logger) *Handler {
	return &Handler{
		users:  users,
		errors: commonhttp.NewErrorHandler(log),
		log:    log,
	}
}

// Routes registers the user endpoint on r, which is mounted at /api/users.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	result, err := h.users.List(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, ListResponse{
		Users:      ToUserDTOs(result.Users),
		ServerInfo: ToServerInfoDTO(result.ServerInfo),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.errors.HandleError(w, r, commonerrors.ErrInternalError.WithCause(fmt.Errorf("decode create user body: %w", err)))
		return
	}

	result, err := h.users.Create(r.Context(), req.ToInput())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.log.WithFields(r.Context(), logger.Fields{
		"action":  "users/create",
		"user_id": result.User.ID,
	}).Info("user created")

	commonhttp.WriteJSON(w, http.StatusCreated, CreateResponse{
		User:       ToUserDTO(result.User),
		Message:    result.Message,
		ServerInfo: ToServerInfoDTO(result.ServerInfo),
	})
}
