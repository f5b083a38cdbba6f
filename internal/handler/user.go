package handler

import (
	"net/http"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// UserHandler handles profile endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, users)
}

// Update handles PATCH /api/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	acct, err := h.users.UpdateProfile(r.Context(), userID(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		Error(w, err)
		return
	}

	JSON(w, http.StatusOK, acct)
}
