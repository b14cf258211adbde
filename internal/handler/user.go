package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/garasiku/servicebook/internal/auth"
	"github.com/garasiku/servicebook/internal/service"
)

// UserHandler serves registration, login and profile management.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleRegister creates a new account.
//
// POST /api/users with {"name": ..., "email": ..., "password": ...}
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body.")
		return
	}

	user, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated,
		fmt.Sprintf("User %s created successfully.", user.Name), nil)
}

// HandleLogin verifies credentials and returns a bearer token plus the
// profile subset clients show after login.
//
// POST /api/users/login with {"email": ..., "password": ...}
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Invalid JSON body.")
		return
	}

	result, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Login successfully.", result)
}

// HandleMe returns the authenticated user's profile.
//
// GET /api/users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	user, err := h.users.Get(r.Context(), principal.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", user)
}

// HandleUpdate applies a partial profile update.
//
// PATCH /api/users/{id} with any of {"name", "email", "password"}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "Valid user ID is required.")
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	var proposed map[string]any
	if err := json.NewDecoder(r.Body).Decode(&proposed); err != nil {
		writeBadRequest(w, "Invalid JSON body.")
		return
	}

	user, err := h.users.Update(r.Context(), principal.ID, id, proposed)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK,
		fmt.Sprintf("User %s updated successfully", user.Name), nil)
}

// HandleDelete removes the authenticated user's own account.
//
// DELETE /api/users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "Valid user ID is required.")
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, errMissingPrincipal)
		return
	}

	if err := h.users.Delete(r.Context(), principal.ID, id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User successfully deleted.", nil)
}
