package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"matchcall/app/models"
	"matchcall/redis"

	socketio "github.com/doquangtan/socket.io/v4"
)

// SocketEmitter delivers an event to one connected socket
type SocketEmitter interface {
	EmitTo(socketID, event string, data interface{}) bool
}

// ConnectionCache shares socket bindings with other nodes
type ConnectionCache interface {
	CacheConnection(ctx context.Context, conn redis.ConnectionData, expiration time.Duration) error
	DeleteConnection(ctx context.Context, socketID string) error
}

// ConnectionTTL bounds how long a binding survives without a heartbeat
const ConnectionTTL = 2 * time.Minute

type ioEmitter struct {
	io *socketio.Io
}

// NewSocketIOEmitter emits through the sockets connected to io
func NewSocketIOEmitter(io *socketio.Io) SocketEmitter {
	return &ioEmitter{io: io}
}

func (e *ioEmitter) EmitTo(socketID, event string, data interface{}) bool {
	for _, socket := range e.io.Sockets() {
		if socket.Id == socketID {
			socket.Emit(event, data)
			return true
		}
	}
	return false
}

// MessageData is the envelope pushed to clients
type MessageData struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// MessagingService tracks which sockets belong to which user and pushes events to them
type MessagingService struct {
	mu      sync.RWMutex
	sockets map[string]string
	users   map[string]map[string]struct{}

	emitter SocketEmitter
	cache   ConnectionCache
	log     *slog.Logger
}

// NewMessagingService creates a new messaging service instance. cache may be nil.
func NewMessagingService(emitter SocketEmitter, cache ConnectionCache, logger *slog.Logger) *MessagingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessagingService{
		sockets: make(map[string]string),
		users:   make(map[string]map[string]struct{}),
		emitter: emitter,
		cache:   cache,
		log:     logger.With("component", "messaging"),
	}
}

// Bind associates an authenticated socket with a user
func (m *MessagingService) Bind(ctx context.Context, socketID, userID string) {
	m.mu.Lock()
	if previous, ok := m.sockets[socketID]; ok && previous != userID {
		m.removeLocked(socketID, previous)
	}
	m.sockets[socketID] = userID
	if m.users[userID] == nil {
		m.users[userID] = make(map[string]struct{})
	}
	m.users[userID][socketID] = struct{}{}
	m.mu.Unlock()

	m.Touch(ctx, socketID)
}

// Touch refreshes the shared binding of a socket
func (m *MessagingService) Touch(ctx context.Context, socketID string) {
	userID, ok := m.UserOf(socketID)
	if !ok || m.cache == nil {
		return
	}
	now := time.Now().UTC()
	err := m.cache.CacheConnection(ctx, redis.ConnectionData{
		SocketID:    socketID,
		UserID:      userID,
		ConnectedAt: now,
		LastSeen:    now,
	}, ConnectionTTL)
	if err != nil {
		m.log.Warn("connection not cached", "socket_id", socketID, "error", err)
	}
}

// Unbind forgets a socket and returns the user it belonged to
func (m *MessagingService) Unbind(ctx context.Context, socketID string) (string, bool) {
	m.mu.Lock()
	userID, ok := m.sockets[socketID]
	if ok {
		m.removeLocked(socketID, userID)
	}
	m.mu.Unlock()

	if ok && m.cache != nil {
		if err := m.cache.DeleteConnection(ctx, socketID); err != nil {
			m.log.Warn("connection not removed from cache", "socket_id", socketID, "error", err)
		}
	}
	return userID, ok
}

func (m *MessagingService) removeLocked(socketID, userID string) {
	delete(m.sockets, socketID)
	if set := m.users[userID]; set != nil {
		delete(set, socketID)
		if len(set) == 0 {
			delete(m.users, userID)
		}
	}
}

// UserOf returns the user bound to a socket
func (m *MessagingService) UserOf(socketID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userID, ok := m.sockets[socketID]
	return userID, ok
}

// SocketsOf returns the sockets of a user in a stable order
func (m *MessagingService) SocketsOf(userID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.users[userID]))
	for id := range m.users[userID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsOnline reports whether the user has at least one bound socket
func (m *MessagingService) IsOnline(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users[userID]) > 0
}

// SendMessageToUser sends a message to all sockets of a user and returns how many received it
func (m *MessagingService) SendMessageToUser(userID, event string, data interface{}) int {
	sent := 0
	for _, socketID := range m.SocketsOf(userID) {
		if m.emitter.EmitTo(socketID, event, data) {
			sent++
		}
	}
	return sent
}

// Notify pushes a queue event to the user
func (m *MessagingService) Notify(userID, event string, data interface{}) {
	m.SendMessageToUser(userID, event, MessageData{
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Navigate emits the navigation event to every client of the user
func (m *MessagingService) Navigate(_ context.Context, userID string, event models.NavigationEvent) error {
	if m.SendMessageToUser(userID, EventNavigate, event) == 0 {
		return fmt.Errorf("no connected client for user %s", userID)
	}
	return nil
}
