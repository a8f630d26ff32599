package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"newsdesk/controller"
	"newsdesk/domain"
	"newsdesk/errors"
)

// createUpgrader creates a WebSocket upgrader restricted to the configured origins.
func createUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowedMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowedMap[origin] = true
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowedMap[origin]
		},
	}
}

type clientFrame struct {
	Type string `json:"type"` // "send" | "hide"
	Text string `json:"text,omitempty"`
	ID   string `json:"id,omitempty"`
}

type serverFrame struct {
	Type     string      `json:"type"` // "snapshot" | "error"
	Messages []wsMessage `json:"messages,omitempty"`
	Error    string      `json:"error,omitempty"`
}

type wsMessage struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	SenderID   string     `json:"senderId"`
	SenderName string     `json:"senderName"`
	Timestamp  *time.Time `json:"timestamp"`
}

// HandleChatSocket handles GET /ws/chat.
//
// One connection is one controller session: subscribe on connect, full
// visible list pushed on every change, teardown exactly once when the
// client goes away. All writes to the connection happen on the single
// writer goroutine; the read loop and the subscription feed it frames.
func (h *Handler) HandleChatSocket(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.identity(r)
	if err != nil {
		h.writeError(w, errors.MapToHTTPStatus(err), "authentication required")
		return
	}
	if !h.Chat.IsAllowed(r.Context(), viewer.ID) {
		h.writeError(w, http.StatusForbidden, "not allowed")
		return
	}

	upgrader := createUpgrader(h.AllowedOrigins)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	outbound := make(chan serverFrame, h.ConnectionBufferSize)
	room := controller.NewChatRoom(h.Log, h.Chat, viewer, func(messages []domain.Message) {
		h.push(outbound, snapshotFrame(messages))
	})

	// Stop before close: once Stop returns, no further list replacement can
	// fire, so closing the outbound channel is safe.
	defer func() {
		room.Stop()
		close(outbound)
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for frame := range outbound {
			if err := conn.WriteJSON(frame); err != nil {
				h.Log.Debug("write to chat client failed",
					"viewer_id", viewer.ID, "error", err)
				return
			}
		}
	}()

	if err := room.Start(); err != nil {
		h.Log.Error("chat subscription failed", "viewer_id", viewer.ID, "error", err)
		h.push(outbound, serverFrame{Type: "error", Error: "subscription failed"})
		return
	}
	h.Log.Info("chat client connected", "viewer_id", viewer.ID)

	for {
		var frame clientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			h.Log.Info("chat client disconnected", "viewer_id", viewer.ID)
			return
		}

		select {
		case <-done:
			return
		default:
		}

		switch frame.Type {
		case "send":
			room.SetCompose(frame.Text)
			if err := room.Send(r.Context()); err != nil {
				// The compose buffer is preserved by the controller; the
				// client keeps its input and may retry.
				h.push(outbound, serverFrame{Type: "error", Error: err.Error()})
			}
		case "hide":
			if err := room.Hide(r.Context(), frame.ID); err != nil {
				h.push(outbound, serverFrame{Type: "error", Error: err.Error()})
			}
		default:
			h.push(outbound, serverFrame{Type: "error", Error: "unknown frame type"})
		}
	}
}

// push enqueues a frame without ever blocking the subscription delivery
// path. On backpressure the oldest frame is dropped: every snapshot is a
// full-state replacement, so newer always supersedes older.
func (h *Handler) push(outbound chan serverFrame, frame serverFrame) {
	for {
		select {
		case outbound <- frame:
			return
		default:
			select {
			case <-outbound:
			default:
			}
		}
	}
}

func snapshotFrame(messages []domain.Message) serverFrame {
	return serverFrame{
		Type: "snapshot",
		Messages: lo.Map(messages, func(m domain.Message, _ int) wsMessage {
			return wsMessage{
				ID:         m.ID,
				Text:       m.Text,
				SenderID:   m.SenderID,
				SenderName: m.SenderName,
				Timestamp:  m.Timestamp,
			}
		}),
	}
}
