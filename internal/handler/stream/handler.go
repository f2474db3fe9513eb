package stream

import (
	"context"
	"fmt"
	"net/http"

	conversationService "github.com/insureassist/backend/internal/service/conversation"
	"github.com/insureassist/backend/pkg/utils"
)

// Handler pushes conversation activity over Server-Sent Events so the UI
// can render deferred bot turns and offers without polling.
type Handler struct {
	svc *conversationService.Service
}

// New creates a new stream handler.
func New(svc *conversationService.Service) *Handler {
	return &Handler{svc: svc}
}

// HandleStreamRequest streams session events until the client disconnects.
// The current snapshot is sent first so late subscribers catch up.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	session, err := h.svc.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	events, cancel, err := h.svc.Subscribe(sessionID)
	if err != nil {
		return err
	}
	defer cancel()

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "session", session)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			utils.SendSSEEvent(w, flusher, string(ev.Type), ev)
		}
	}
}
