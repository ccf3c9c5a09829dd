package config

import (
	"context"
	"log/slog"
	"time"

	socketio "github.com/doquangtan/socket.io/v4"

	"matchcall/app/models"
)

// SystemSocketHandler handles heartbeat and connection lifecycle events
type SystemSocketHandler struct {
	presence Presence
	log      *slog.Logger
}

// NewSystemSocketHandler creates a new system socket handler instance
func NewSystemSocketHandler(presence Presence, logger *slog.Logger) *SystemSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SystemSocketHandler{
		presence: presence,
		log:      logger.With("component", "socket_system"),
	}
}

// SetupSystemHandlers configures all system-related Socket.IO event handlers
func (h *SystemSocketHandler) SetupSystemHandlers(socket *socketio.Socket) {
	socket.On("heartbeat", func(event *socketio.EventPayload) {
		socket.Emit("heartbeat", h.Heartbeat(context.Background(), socket.Id))
	})

	socket.On("ping", func(event *socketio.EventPayload) {
		socket.Emit("pong", models.HeartbeatResponse{
			Success:   true,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	})

	socket.On("disconnect", func(event *socketio.EventPayload) {
		h.Disconnect(context.Background(), socket.Id)
	})
}

// Heartbeat refreshes the socket's presence binding
func (h *SystemSocketHandler) Heartbeat(ctx context.Context, socketID string) models.HeartbeatResponse {
	h.presence.Touch(ctx, socketID)
	return models.HeartbeatResponse{
		Success:   true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Disconnect drops the socket's binding. Queue sessions survive so the user
// can reconnect; the cleanup job expires them once the user stays offline.
func (h *SystemSocketHandler) Disconnect(ctx context.Context, socketID string) {
	if userID, ok := h.presence.Unbind(ctx, socketID); ok {
		h.log.Info("🔌 socket disconnected", "socket_id", socketID, "user_id", userID)
		return
	}
	h.log.Debug("🔌 anonymous socket disconnected", "socket_id", socketID)
}
