package admin

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/insureassist/backend/internal/model/user"
	"github.com/insureassist/backend/pkg/utils"
)

// Handler is the read-only admin view over the user store.
type Handler struct {
	users user.Store
}

// New creates the admin handler.
func New(users user.Store) *Handler {
	return &Handler{users: users}
}

// RegisterRoutes mounts the admin endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/users", h.handleListUsers)
	})
}

type userRow struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	current, ok := h.users.FindByID(h.users.CurrentUserID())
	if !ok || !current.IsAdmin {
		utils.RespondError(w, http.StatusForbidden, "admin access required")
		return
	}

	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	rows := make([]userRow, 0)
	for _, u := range h.users.List() {
		if q != "" &&
			!strings.Contains(strings.ToLower(u.Username), q) &&
			!strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		rows = append(rows, userRow{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin})
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"total": len(rows),
		"users": rows,
	})
}
