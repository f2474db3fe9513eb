package policy

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insureassist/backend/internal/model/conversation"
	"github.com/insureassist/backend/internal/service/recommend"
	"github.com/insureassist/backend/pkg/utils"
)

// Handler exposes the policy catalog and direct offer generation for
// clients that already hold a full requirement record.
type Handler struct {
	engine *recommend.Engine
}

// New creates the policy handler.
func New(engine *recommend.Engine) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes mounts the policy endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/policies", func(r chi.Router) {
		r.Get("/templates", h.handleTemplates)
		r.Post("/recommendations", h.handleRecommendations)
	})
}

func (h *Handler) handleTemplates(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.engine.Templates())
}

func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req conversation.Requirement
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	utils.RespondJSON(w, http.StatusOK, h.engine.GenerateOffers(req))
}
