package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	socketio "github.com/doquangtan/socket.io/v4"
	"github.com/gofiber/fiber/v2"

	"matchcall/app/controllers"
	"matchcall/app/models"
	"matchcall/app/services"
	"matchcall/app/utils"
)

// Queue events a client may send over the socket
const (
	EventSessionBind   = "session:bind"
	EventQueueJoin     = "queue:join"
	EventQueueState    = "queue:state"
	EventQueueAccept   = "queue:accept"
	EventQueueDecline  = "queue:decline"
	EventQueueSchedule = "queue:schedule"
	EventQueueLeave    = "queue:leave"
)

// AuthenticationError is emitted as authentication_error when a socket event
// arrives without a usable identity
type AuthenticationError struct {
	models.ConnectionError
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// Presence binds sockets to users
type Presence interface {
	Bind(ctx context.Context, socketID, userID string)
	Touch(ctx context.Context, socketID string)
	Unbind(ctx context.Context, socketID string) (string, bool)
	UserOf(socketID string) (string, bool)
}

// SocketIoHandler handles all Socket.IO related functionality
type SocketIoHandler struct {
	io       *socketio.Io
	queues   controllers.QueueManager
	presence Presence
	secret   []byte
	system   *SystemSocketHandler
	log      *slog.Logger
}

// NewSocketHandler registers the queue events on io. The same io must back
// the emitter used by the messaging service.
func NewSocketHandler(io *socketio.Io, queues controllers.QueueManager, presence Presence, secret []byte, logger *slog.Logger) *SocketIoHandler {
	if logger == nil {
		logger = slog.Default()
	}
	handler := &SocketIoHandler{
		io:       io,
		queues:   queues,
		presence: presence,
		secret:   secret,
		system:   NewSystemSocketHandler(presence, logger),
		log:      logger.With("component", "socket"),
	}

	handler.setupSocketHandlers()
	return handler
}

// setupSocketHandlers configures all Socket.IO event handlers
func (h *SocketIoHandler) setupSocketHandlers() {
	// A handshake token is optional; sockets may also bind later with session:bind
	h.io.OnAuthorization(func(params map[string]string) bool {
		token := params["token"]
		if token == "" {
			return true
		}
		if _, err := utils.VerifyIdentityToken(h.secret, token); err != nil {
			h.log.Warn("rejected socket handshake", "error", err)
			return false
		}
		return true
	})

	h.io.OnConnection(func(socket *socketio.Socket) {
		h.log.Info("✅ socket connected", "socket_id", socket.Id, "namespace", socket.Nps)

		socket.Emit("connect_response", models.WelcomeResponse{
			Success: true,
			Status:  "connected",
			Message: "Welcome to matchcall",
			ServerInfo: map[string]interface{}{
				"name":      AppName,
				"version":   AppVersion,
				"socket_id": socket.Id,
			},
		})

		for _, name := range []string{
			EventSessionBind,
			EventQueueJoin,
			EventQueueState,
			EventQueueAccept,
			EventQueueDecline,
			EventQueueSchedule,
			EventQueueLeave,
		} {
			eventName := name
			socket.On(eventName, func(event *socketio.EventPayload) {
				h.onEvent(socket, eventName, event)
			})
		}

		h.system.SetupSystemHandlers(socket)
	})
}

func (h *SocketIoHandler) onEvent(socket *socketio.Socket, eventName string, event *socketio.EventPayload) {
	req, connErr := parseSocketRequest(event, eventName)
	if connErr != nil {
		connErr.SocketID = socket.Id
		socket.Emit("connection_error", *connErr)
		return
	}

	resp, err := h.HandleEvent(context.Background(), socket.Id, eventName, req)
	if err != nil {
		if authErr, ok := err.(*AuthenticationError); ok {
			authErr.SocketID = socket.Id
			socket.Emit("authentication_error", authErr.ConnectionError)
			return
		}
		_, view := controllers.ErrorView(err, eventName)
		view.SocketID = socket.Id
		view.Event = "connection_error"
		socket.Emit("connection_error", view)
		return
	}

	resp.SocketID = socket.Id
	socket.Emit(eventName+":ack", resp)
}

// HandleEvent runs one queue event for the socket and returns the acknowledgement
func (h *SocketIoHandler) HandleEvent(ctx context.Context, socketID, eventName string, req models.SocketRequest) (models.SocketResponse, error) {
	identity, err := h.authenticate(ctx, socketID, eventName, req)
	if err != nil {
		return models.SocketResponse{}, err
	}
	userID := identity.UserID

	resp := models.SocketResponse{
		Status:    "success",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Event:     eventName,
	}

	switch eventName {
	case EventSessionBind:
		resp.Message = "socket bound to " + userID
		return resp, nil

	case EventQueueJoin:
		opts, err := controllers.QueueOptionsFromRequest(userID, models.JoinQueueRequest{
			QueueKind:      req.QueueKind,
			ConnectionType: req.ConnectionType,
			Purpose:        req.Purpose,
			Description:    req.Description,
		})
		if err != nil {
			return resp, err
		}
		snap, err := h.queues.Join(ctx, opts)
		if err != nil {
			return resp, err
		}
		resp.Snapshot = &snap

	case EventQueueState:
		snap, err := h.queues.Snapshot(ctx, userID)
		if err != nil {
			return resp, err
		}
		resp.Snapshot = &snap

	case EventQueueAccept:
		if _, err := h.queues.Accept(ctx, userID, req.MatchID); err != nil {
			return resp, err
		}
		resp.Message = "match accepted"

	case EventQueueDecline:
		if err := h.queues.Decline(ctx, userID, req.MatchID); err != nil {
			return resp, err
		}
		snap, err := h.queues.Snapshot(ctx, userID)
		if err != nil {
			return resp, err
		}
		resp.Snapshot = &snap

	case EventQueueSchedule:
		if _, err := h.queues.Schedule(ctx, userID, req.UserID); err != nil {
			return resp, err
		}
		resp.Message = "schedule requested"

	case EventQueueLeave:
		if _, err := h.queues.Leave(ctx, userID); err != nil {
			return resp, err
		}
		resp.Message = "left the queue"

	default:
		return resp, fmt.Errorf("%w: unknown event %q", services.ErrInvalidInput, eventName)
	}

	return resp, nil
}

// authenticate resolves the caller from the token in the payload, binding the
// socket to that user, or from an earlier binding
func (h *SocketIoHandler) authenticate(ctx context.Context, socketID, eventName string, req models.SocketRequest) (*models.Identity, error) {
	if req.Token != "" {
		claims, err := utils.VerifyIdentityToken(h.secret, req.Token)
		if err != nil {
			return nil, authenticationError(eventName, "please sign in")
		}
		h.presence.Bind(ctx, socketID, claims.UserID)
		return &models.Identity{UserID: claims.UserID, Name: claims.Name, Avatar: claims.Avatar}, nil
	}

	if eventName == EventSessionBind {
		return nil, authenticationError(eventName, "token is required")
	}
	if userID, ok := h.presence.UserOf(socketID); ok {
		return &models.Identity{UserID: userID}, nil
	}
	return nil, authenticationError(eventName, "please sign in")
}

func authenticationError(eventName, message string) *AuthenticationError {
	return &AuthenticationError{ConnectionError: models.ConnectionError{
		Status:    "error",
		ErrorCode: models.ErrorCodeInvalidSession,
		ErrorType: models.ErrorTypeAuthentication,
		Field:     "token",
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Event:     eventName,
	}}
}

// parseSocketRequest converts the first event argument into a SocketRequest.
// Events without arguments yield an empty request.
func parseSocketRequest(event *socketio.EventPayload, eventName string) (models.SocketRequest, *models.ConnectionError) {
	var req models.SocketRequest
	if event == nil || len(event.Data) == 0 {
		return req, nil
	}

	data, ok := event.Data[0].(map[string]interface{})
	if !ok {
		return req, &models.ConnectionError{
			Status:    "error",
			ErrorCode: models.ErrorCodeInvalidFormat,
			ErrorType: models.ErrorTypeFormat,
			Field:     eventName,
			Message:   "Invalid payload format",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Event:     "connection_error",
		}
	}

	raw, _ := json.Marshal(data)
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, &models.ConnectionError{
			Status:    "error",
			ErrorCode: models.ErrorCodeInvalidFormat,
			ErrorType: models.ErrorTypeFormat,
			Field:     eventName,
			Message:   "Failed to parse payload",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Event:     "connection_error",
		}
	}
	return req, nil
}

// SetupSocketRoutes configures Socket.IO routes for the Fiber app
func (h *SocketIoHandler) SetupSocketRoutes(app *fiber.App) {
	app.Use("/", h.io.Middleware)
	app.Route("/socket.io", h.io.FiberRoute)
}
