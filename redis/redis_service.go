package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get when the key does not exist
var ErrNotFound = errors.New("key not found")

// Options configure the Redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Service handles all Redis-related operations
type Service struct {
	client *redis.Client
}

// NewService creates a new Redis service instance
func NewService(opts Options) *Service {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		// Connection pool settings
		PoolSize:     10,
		MinIdleConns: 5,
		// Timeout settings
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	return &Service{client: client}
}

// Ping checks the connection
func (r *Service) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *Service) Close() error {
	return r.client.Close()
}

// Set stores a JSON encoded value
func (r *Service) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := r.client.Set(ctx, key, jsonValue, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Get decodes a JSON value into dest
func (r *Service) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("failed to get key %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value for key %s: %w", key, err)
	}
	return nil
}

// GetInt reads an integer value written by another producer. ok is false when the key is missing.
func (r *Service) GetInt(ctx context.Context, key string) (value int, ok bool, err error) {
	raw, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	value, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("key %s does not hold an integer: %w", key, err)
	}
	return value, true, nil
}

// Delete removes a key
func (r *Service) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Publish sends a JSON encoded message on a channel
func (r *Service) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish on %s: %w", channel, err)
	}
	return nil
}

// PSubscribe delivers every message on channels matching pattern to handler
// until ctx is cancelled
func (r *Service) PSubscribe(ctx context.Context, pattern string, handler func(channel, payload string)) error {
	pubsub := r.client.PSubscribe(ctx, pattern)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", pattern, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			handler(msg.Channel, msg.Payload)
		}
	}
}

// SessionKey is where the snapshot of a user's queue session lives
func SessionKey(userID string) string {
	return fmt.Sprintf("queue:session:%s", userID)
}

// ConnectionKey is where a socket's binding lives
func ConnectionKey(socketID string) string {
	return fmt.Sprintf("connection:%s", socketID)
}

// ConnectionData represents an authenticated socket stored in Redis
type ConnectionData struct {
	SocketID    string    `json:"socket_id"`
	UserID      string    `json:"user_id"`
	Namespace   string    `json:"namespace,omitempty"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// CacheConnection stores connection data so other nodes can see who is online
func (r *Service) CacheConnection(ctx context.Context, conn ConnectionData, expiration time.Duration) error {
	return r.Set(ctx, ConnectionKey(conn.SocketID), conn, expiration)
}

// DeleteConnection removes connection data
func (r *Service) DeleteConnection(ctx context.Context, socketID string) error {
	return r.Delete(ctx, ConnectionKey(socketID))
}
