package conversation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	conversationService "github.com/insureassist/backend/internal/service/conversation"
	"github.com/insureassist/backend/pkg/utils"
)

// Handler exposes the advisory conversation over REST.
type Handler struct {
	svc *conversationService.Service
}

// New creates the conversation handler.
func New(svc *conversationService.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the conversation endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/conversation", func(r chi.Router) {
		r.Post("/session", h.handleCreateSession)
		r.Get("/{sessionID}", h.handleGetSession)
		r.Post("/{sessionID}/messages", h.handleSubmitMessage)
		r.Post("/{sessionID}/restart", h.handleRestart)
	})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	done, err := h.svc.Submit(r.Context(), chi.URLParam(r, "sessionID"), payload.Text)
	switch {
	case errors.Is(err, conversationService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, conversationService.ErrReplyPending):
		utils.RespondError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// A nil done means the message was blank and dropped without effect.
	if done == nil {
		utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "ignored"})
		return
	}
	utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handler) handleRestart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Restart(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	session, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}
