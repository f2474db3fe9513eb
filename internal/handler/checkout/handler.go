package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	checkoutService "github.com/insureassist/backend/internal/service/checkout"
	conversationService "github.com/insureassist/backend/internal/service/conversation"
	"github.com/insureassist/backend/pkg/utils"
)

// Handler bridges a session's generated offers to the mock payment gateway.
type Handler struct {
	gateway *checkoutService.Service
	convSvc *conversationService.Service
}

// New creates the checkout handler.
func New(gateway *checkoutService.Service, convSvc *conversationService.Service) *Handler {
	return &Handler{gateway: gateway, convSvc: convSvc}
}

// RegisterRoutes mounts the checkout endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/checkout", h.handleCheckout)
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		checkoutService.Request
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.convSvc.GetSession(r.Context(), payload.SessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	// The offer must belong to the session's current generation.
	found := false
	for _, offer := range session.Offers {
		if offer.ID == payload.OfferID {
			found = true
			break
		}
	}
	if !found {
		utils.RespondError(w, http.StatusNotFound, "policy offer not found for this session")
		return
	}

	confirmation, err := h.gateway.Process(r.Context(), payload.Request)
	if err != nil {
		var verr *checkoutService.ValidationError
		if errors.As(err, &verr) {
			utils.RespondError(w, http.StatusUnprocessableEntity, verr.Message)
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, confirmation)
}
