package conversation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	conversationService "github.com/insureassist/backend/internal/service/conversation"
	"github.com/insureassist/backend/internal/service/recommend"
)

func newWSServer(t *testing.T, opts ...conversationService.Option) (*httptest.Server, *conversationService.Service) {
	t.Helper()
	opts = append([]conversationService.Option{conversationService.WithDelays(0, 0, 0)}, opts...)
	svc := conversationService.NewService(recommend.NewEngine(), opts...)

	r := chi.NewRouter()
	NewWebSocketHandler(svc).RegisterWebSocketRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func dialWS(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/conversation/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s err: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) outboundFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame outboundFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame err: %v", err)
	}
	return frame
}

// readUntil skips frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, frameType string) outboundFrame {
	t.Helper()
	for i := 0; i < 10; i++ {
		frame := readFrame(t, conn)
		if frame.Type == frameType {
			return frame
		}
	}
	t.Fatalf("no %q frame within 10 reads", frameType)
	return outboundFrame{}
}

func TestWebSocketSessionFrameFirst(t *testing.T) {
	srv, svc := newWSServer(t)
	session, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	conn := dialWS(t, srv, session.ID)

	first := readFrame(t, conn)
	if first.Type != "session" {
		t.Fatalf("expected session frame first, got %q", first.Type)
	}
	if first.SessionID != session.ID {
		t.Fatalf("expected session id %s, got %s", session.ID, first.SessionID)
	}
}

func TestWebSocketMessageRoundTrip(t *testing.T) {
	srv, svc := newWSServer(t)
	session, _ := svc.CreateSession(context.Background())
	conn := dialWS(t, srv, session.ID)
	readFrame(t, conn) // session frame

	if err := conn.WriteJSON(map[string]string{"type": "message", "text": "34"}); err != nil {
		t.Fatalf("write message frame err: %v", err)
	}

	userTurn := readUntil(t, conn, "turn")
	botTurn := readUntil(t, conn, "turn")

	var ev struct {
		Turn struct {
			Sender string `json:"sender"`
			Text   string `json:"text"`
		} `json:"turn"`
	}
	for i, frame := range []outboundFrame{userTurn, botTurn} {
		raw, err := json.Marshal(frame.Data)
		if err != nil {
			t.Fatalf("frame %d: marshal data err: %v", i, err)
		}
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("frame %d: decode event err: %v", i, err)
		}
	}
	// ev now holds the second (bot) turn.
	if ev.Turn.Sender != "bot" {
		t.Fatalf("expected bot turn after user turn, got %+v", ev)
	}

	got, _ := svc.GetSession(context.Background(), session.ID)
	if len(got.Turns) != 2 {
		t.Fatalf("expected 2 turns recorded, got %d", len(got.Turns))
	}
}

func TestWebSocketRestartFrame(t *testing.T) {
	srv, svc := newWSServer(t)
	session, _ := svc.CreateSession(context.Background())
	conn := dialWS(t, srv, session.ID)
	readFrame(t, conn)

	if err := conn.WriteJSON(map[string]string{"type": "message", "text": "34"}); err != nil {
		t.Fatalf("write message frame err: %v", err)
	}
	readUntil(t, conn, "turn")
	readUntil(t, conn, "turn")

	if err := conn.WriteJSON(map[string]string{"type": "restart"}); err != nil {
		t.Fatalf("write restart frame err: %v", err)
	}
	readUntil(t, conn, "reset")

	got, _ := svc.GetSession(context.Background(), session.ID)
	if len(got.Turns) != 0 || got.Step != conversationService.StepAge {
		t.Fatalf("restart over websocket must clear the session: %+v", got)
	}
}

func TestWebSocketUnknownFrameType(t *testing.T) {
	srv, svc := newWSServer(t)
	session, _ := svc.CreateSession(context.Background())
	conn := dialWS(t, srv, session.ID)
	readFrame(t, conn)

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("write frame err: %v", err)
	}
	if frame := readUntil(t, conn, "error"); frame.Data != "unknown frame type" {
		t.Fatalf("unexpected error payload: %v", frame.Data)
	}
}

func TestWebSocketUnknownSessionRejected(t *testing.T) {
	srv, _ := newWSServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/conversation/ws/missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake to fail for unknown session")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}
