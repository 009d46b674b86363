// internal/app/features/users/crud.go
package users

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nsu/musclub/internal/app/features/shared/api"
	userstore "github.com/nsu/musclub/internal/app/store/users"
	"github.com/nsu/musclub/internal/app/system/timeouts"
	"github.com/nsu/musclub/internal/domain/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	maxUsernameLen = 100
	maxEmailLen    = 255
	maxUserRoleLen = 50
)

// userRequest is the JSON body for create and update.
type userRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

func (req *userRequest) validate() error {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return errors.New("username is required")
	}
	if len(username) > maxUsernameLen {
		return errors.New("username is too long")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return errors.New("email is required")
	}
	if len(email) > maxEmailLen {
		return errors.New("email is too long")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email is not a valid address")
	}
	if len(strings.TrimSpace(req.Role)) > maxUserRoleLen {
		return errors.New("role is too long")
	}
	return nil
}

func (req *userRequest) toModel() models.User {
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = "MEMBER"
	}
	return models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Role:     role,
	}
}

// userListResponse is the paged list envelope.
type userListResponse struct {
	Users   []models.User `json:"users"`
	Start   int           `json:"start"`
	Limit   int           `json:"limit"`
	HasNext bool          `json:"has_next"`
}

// HandleCreate handles POST /api/users.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Users.Create(ctx, req.toModel())
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	h.Log.Info("user created",
		zap.String("user_id", created.ID.Hex()),
		zap.String("username", created.Username))
	api.WriteJSON(w, http.StatusCreated, created)
}

// ServeUser handles GET /api/users/{id}.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, u)
}

// ServeList handles GET /api/users with start/limit paging.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	start := 1
	if v, err := strconv.Atoi(r.URL.Query().Get("start")); err == nil && v > 0 {
		start = v
	}
	limit := defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, hasNext, err := h.Users.ListPage(ctx, start, limit)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	if list == nil {
		list = []models.User{}
	}
	api.WriteJSON(w, http.StatusOK, userListResponse{
		Users:   list,
		Start:   start,
		Limit:   limit,
		HasNext: hasNext,
	})
}

// HandleUpdate handles PUT /api/users/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req userRequest
	if err := api.Decode(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	updated, err := h.Users.Update(ctx, id, req.toModel())
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /api/users/{id}.
// Membership rows referencing the user are left in place; readers skip
// rows whose user no longer resolves.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := api.URLParamID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeStoreError maps user-store sentinels onto HTTP statuses.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		api.Error(w, http.StatusNotFound, "user not found")
	case errors.Is(err, userstore.ErrUsernameTaken),
		errors.Is(err, userstore.ErrEmailTaken):
		api.Error(w, http.StatusConflict, err.Error())
	default:
		h.Log.Error("users: request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "internal error")
	}
}
