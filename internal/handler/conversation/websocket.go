package conversation

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	conversationService "github.com/insureassist/backend/internal/service/conversation"
	"github.com/insureassist/backend/pkg/utils"
)

// WebSocketHandler runs the conversation over a websocket: inbound frames
// submit messages or restart, outbound frames mirror session events.
type WebSocketHandler struct {
	svc      *conversationService.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the websocket transport.
func NewWebSocketHandler(svc *conversationService.Service) *WebSocketHandler {
	return &WebSocketHandler{
		svc: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes mounts the websocket endpoint.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/conversation/ws/{sessionID}", h.handleWebSocket)
}

type inboundFrame struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// wsConn serializes writes; the event forwarder and the read loop both
// produce outbound frames.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) write(frame outboundFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(frame); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}

type outboundFrame struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.svc.GetSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for session=%s: %v", sessionID, err)
		return
	}
	defer raw.Close()
	conn := &wsConn{conn: raw}

	events, cancel, err := h.svc.Subscribe(sessionID)
	if err != nil {
		conn.write(outboundFrame{Type: "error", Data: err.Error(), Timestamp: time.Now().UnixMilli()})
		return
	}
	defer cancel()

	conn.write(outboundFrame{
		Type:      "session",
		SessionID: sessionID,
		Data:      session,
		Timestamp: time.Now().UnixMilli(),
	})

	// Writer: forward session events until the reader closes the stop
	// channel or the connection dies.
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				conn.write(outboundFrame{
					Type:      string(ev.Type),
					SessionID: sessionID,
					Data:      ev,
					Timestamp: time.Now().UnixMilli(),
				})
			}
		}
	}()
	defer close(stop)

	for {
		_, data, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] unexpected close for session=%s: %v", sessionID, err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			conn.write(outboundFrame{Type: "error", Data: "invalid frame", Timestamp: time.Now().UnixMilli()})
			continue
		}

		switch frame.Type {
		case "message":
			if _, err := h.svc.Submit(r.Context(), sessionID, frame.Text); err != nil {
				h.writeSubmitError(conn, err)
			}
		case "restart":
			if err := h.svc.Restart(r.Context(), sessionID); err != nil {
				conn.write(outboundFrame{Type: "error", Data: err.Error(), Timestamp: time.Now().UnixMilli()})
			}
		default:
			conn.write(outboundFrame{Type: "error", Data: "unknown frame type", Timestamp: time.Now().UnixMilli()})
		}
	}
}

func (h *WebSocketHandler) writeSubmitError(conn *wsConn, err error) {
	kind := "error"
	if errors.Is(err, conversationService.ErrReplyPending) {
		kind = "busy"
	}
	conn.write(outboundFrame{Type: kind, Data: err.Error(), Timestamp: time.Now().UnixMilli()})
}

