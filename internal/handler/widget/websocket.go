package widget

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/bhavnacorp/assist/internal/model/chat"
	widgetservice "github.com/bhavnacorp/assist/internal/service/widget"
	widgetctl "github.com/bhavnacorp/assist/internal/widget"
)

// WebSocketHandler pushes conversation appends to the page as they happen and
// accepts widget events (draft, submit, toggle) over the same connection.
type WebSocketHandler struct {
	svc      *widgetservice.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the live-channel handler.
func NewWebSocketHandler(svc *widgetservice.Service) *WebSocketHandler {
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

// RegisterWebSocketRoutes mounts the live channel.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/widget/ws/{sessionID}", h.handleWebSocket)
}

type inboundEvent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type outboundEvent struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// wsWriter serializes writes; gorilla connections allow one writer at a time
// and appends arrive from the controller's resolution goroutine.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) send(event outboundEvent) {
	event.Timestamp = time.Now().UnixMilli()

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.WriteJSON(event); err != nil {
		log.Printf("[websocket] write failed: %v", err)
	}
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	session, err := h.svc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	writer := &wsWriter{conn: conn}
	controller := session.Controller()

	// Every append is pushed immediately; the page scrolls the newest turn
	// into view on receipt.
	controller.OnAppend(func(turn chat.Turn) {
		writer.send(outboundEvent{Type: "turn", SessionID: sessionID, Data: turn})
	})
	defer controller.OnAppend(nil)

	// Replay the transcript so a reconnecting page catches up.
	writer.send(outboundEvent{Type: "transcript", SessionID: sessionID, Data: controller.Snapshot()})
	writer.send(outboundEvent{Type: "state", SessionID: sessionID, Data: controller.State().String()})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read failed: %v", err)
			}
			return
		}

		var event inboundEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			writer.send(outboundEvent{Type: "error", SessionID: sessionID, Data: "invalid event"})
			continue
		}

		h.dispatch(r.Context(), writer, sessionID, controller, event)
	}
}

func (h *WebSocketHandler) dispatch(ctx context.Context, writer *wsWriter, sessionID string, controller *widgetctl.Controller, event inboundEvent) {
	switch event.Type {
	case "draft":
		controller.SetDraft(event.Text)
	case "submit":
		if event.Text != "" {
			controller.SetDraft(event.Text)
		}
		queued, err := controller.Submit(ctx)
		if err != nil {
			writer.send(outboundEvent{Type: "error", SessionID: sessionID, Data: err.Error()})
			return
		}
		if !queued {
			// Blank input: no turn, no error, nothing to report.
			return
		}
		writer.send(outboundEvent{Type: "state", SessionID: sessionID, Data: controller.State().String()})
	case "toggle":
		state := controller.Toggle()
		writer.send(outboundEvent{Type: "state", SessionID: sessionID, Data: state.String()})
	default:
		writer.send(outboundEvent{Type: "error", SessionID: sessionID, Data: "unknown event type"})
	}
}
