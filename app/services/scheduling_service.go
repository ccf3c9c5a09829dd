package services

import (
	"context"
	"fmt"
	"time"

	"matchcall/app/models"
	"matchcall/app/utils"

	"github.com/gocql/gocql"
)

const insertScheduledCallCQL = `
	INSERT INTO scheduled_calls (requester_id, id, pair_key, peer_id, match_id, connection_type, purpose, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectScheduledCallsCQL = `
	SELECT id, pair_key, requester_id, peer_id, match_id, connection_type, purpose, status, created_at
	FROM scheduled_calls
	WHERE requester_id = ?
	LIMIT ?
`

// CassandraScheduler stores schedule requests in Cassandra
type CassandraScheduler struct {
	session *gocql.Session
	now     func() time.Time
}

// NewCassandraScheduler creates a new scheduler backed by cassandraSession
func NewCassandraScheduler(cassandraSession *gocql.Session) *CassandraScheduler {
	return &CassandraScheduler{session: cassandraSession, now: time.Now}
}

// NewScheduledCall builds the row stored for a request
func NewScheduledCall(req models.ScheduleRequest, now time.Time) (models.ScheduledCall, error) {
	if req.RequesterID == "" || req.PeerID == "" {
		return models.ScheduledCall{}, inputError("requester and peer are required")
	}
	if req.RequesterID == req.PeerID {
		return models.ScheduledCall{}, inputError("cannot schedule a call with yourself")
	}
	if !req.ConnectionType.Valid() {
		return models.ScheduledCall{}, inputError("unknown connection type %q", req.ConnectionType)
	}

	return models.ScheduledCall{
		ID:             gocql.UUIDFromTime(now),
		PairKey:        utils.PairKey(req.RequesterID, req.PeerID),
		RequesterID:    req.RequesterID,
		PeerID:         req.PeerID,
		MatchID:        req.MatchID,
		ConnectionType: string(req.ConnectionType),
		Purpose:        req.Purpose,
		Status:         models.ScheduleStatusRequested,
		CreatedAt:      now,
	}, nil
}

// RequestSchedule inserts a scheduled_calls row with status requested
func (s *CassandraScheduler) RequestSchedule(ctx context.Context, req models.ScheduleRequest) (*models.ScheduledCall, error) {
	call, err := NewScheduledCall(req, s.now().UTC())
	if err != nil {
		return nil, err
	}

	err = s.session.Query(insertScheduledCallCQL,
		call.RequesterID, call.ID, call.PairKey, call.PeerID, call.MatchID,
		call.ConnectionType, call.Purpose, call.Status, call.CreatedAt,
	).WithContext(ctx).Exec()
	if err != nil {
		return nil, fmt.Errorf("failed to insert scheduled call: %w", err)
	}
	return &call, nil
}

// ListRequested returns the most recent calls a user asked for
func (s *CassandraScheduler) ListRequested(ctx context.Context, userID string, limit int) ([]models.ScheduledCall, error) {
	if limit <= 0 {
		limit = 20
	}
	iter := s.session.Query(selectScheduledCallsCQL, userID, limit).WithContext(ctx).Iter()

	var calls []models.ScheduledCall
	var call models.ScheduledCall
	for iter.Scan(&call.ID, &call.PairKey, &call.RequesterID, &call.PeerID, &call.MatchID,
		&call.ConnectionType, &call.Purpose, &call.Status, &call.CreatedAt) {
		calls = append(calls, call)
	}
	if err := iter.Close(); err != nil {
		return nil, &UpstreamError{Op: "list scheduled calls", Err: err}
	}
	return calls, nil
}
