package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/insureassist/backend/internal/model/user"
	"github.com/insureassist/backend/pkg/utils"
)

// Handler exposes the mock account flows over the user store.
type Handler struct {
	users user.Store
}

// New creates the auth handler.
func New(users user.Store) *Handler {
	return &Handler{users: users}
}

// RegisterRoutes mounts the auth endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)
		r.Get("/session", h.handleSession)
	})
}

// publicUser strips the password before a record leaves the API.
type publicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}

func toPublic(u user.User) publicUser {
	return publicUser{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload.Username = strings.TrimSpace(payload.Username)
	payload.Email = strings.TrimSpace(payload.Email)
	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	created, ok := h.users.Create(user.User{
		ID:       uuid.NewString(),
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if !ok {
		utils.RespondError(w, http.StatusConflict, "email already registered")
		return
	}

	if err := h.users.SetCurrentUserID(created.ID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, toPublic(created))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, ok := h.users.FindByCredentials(strings.TrimSpace(payload.Email), payload.Password)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := h.users.SetCurrentUserID(u.ID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, toPublic(u))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.users.ClearCurrentUser(); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	id := h.users.CurrentUserID()
	if id == "" {
		utils.RespondError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	u, ok := h.users.FindByID(id)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	utils.RespondJSON(w, http.StatusOK, toPublic(u))
}
