package handler

import (
	"log/slog"
	"net/http"
	"time"

	svgdocSvc "vecteditor/internal/domain/services/svgdoc"
	"vecteditor/internal/httputil"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// ChangeHandler relays document change events to websocket peers
type ChangeHandler struct {
	notifier svgdocSvc.Notifier
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewChangeHandler creates a handler accepting connections from the given
// origins; "*" accepts any origin.
func NewChangeHandler(notifier svgdocSvc.Notifier, allowedOrigins []string, logger *slog.Logger) *ChangeHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &ChangeHandler{
		notifier: notifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		logger: logger,
	}
}

// Stream upgrades to a websocket and writes one JSON ChangeEvent per
// message until either side goes away.
// GET /api/documents/{id}/ws
func (h *ChangeHandler) Stream(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("id")
	if documentID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	// Subscribe first so no event published after the handshake is missed
	events, cancel, err := h.notifier.Subscribe(r.Context(), documentID)
	if err != nil {
		h.logger.Error("subscribe failed", "document_id", documentID, "error", err)
		httputil.RespondError(w, http.StatusServiceUnavailable, "change feed unavailable")
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		h.logger.Debug("websocket upgrade failed", "document_id", documentID, "error", err)
		return
	}
	defer conn.Close()

	peerID := httputil.GetPeerID(r)
	h.logger.Info("peer connected", "document_id", documentID, "peer_id", peerID)
	defer h.logger.Info("peer disconnected", "document_id", documentID, "peer_id", peerID)

	done := make(chan struct{})
	go h.readPump(conn, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case event, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "change feed closed"),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("websocket write failed", "document_id", documentID, "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so control messages are processed, and
// closes done when the peer goes away.
func (h *ChangeHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
