package services

import (
	"context"
	"errors"
	"time"

	"matchcall/app/models"
	"matchcall/redis"
)

// KeyValueStore is the JSON key/value surface of the Redis service
type KeyValueStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
}

// RedisSnapshotStore keeps queue snapshots under queue:session:<user>
type RedisSnapshotStore struct {
	kv  KeyValueStore
	ttl time.Duration
}

// NewRedisSnapshotStore creates a snapshot store; snapshots expire after ttl
func NewRedisSnapshotStore(kv KeyValueStore, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{kv: kv, ttl: ttl}
}

func (s *RedisSnapshotStore) SaveSnapshot(ctx context.Context, snap models.QueueSnapshot) error {
	return s.kv.Set(ctx, redis.SessionKey(snap.UserID), snap, s.ttl)
}

func (s *RedisSnapshotStore) LoadSnapshot(ctx context.Context, userID string) (*models.QueueSnapshot, error) {
	var snap models.QueueSnapshot
	if err := s.kv.Get(ctx, redis.SessionKey(userID), &snap); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &snap, nil
}
