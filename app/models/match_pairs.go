package models

import (
	"time"

	"github.com/gocql/gocql"
)

// MatchCandidate is a peer proposed by the external matching feed, pending
// the user's accept/decline decision
type MatchCandidate struct {
	MatchID   string       `json:"match_id"`
	PeerID    string       `json:"peer_id,omitempty"`
	Profile   *UserProfile `json:"profile,omitempty"`
	OfferedAt time.Time    `json:"offered_at"`
}

// QueueTicket is what the matcher receives when a user starts searching
type QueueTicket struct {
	SessionID      string         `json:"session_id"`
	UserID         string         `json:"user_id"`
	QueueKind      QueueKind      `json:"queue_kind"`
	ConnectionType ConnectionType `json:"connection_type,omitempty"`
	Purpose        string         `json:"purpose,omitempty"`
	Description    string         `json:"description,omitempty"`
	JoinedAt       time.Time      `json:"joined_at"`
}

// MatchResponse is the user's answer to a candidate
type MatchResponse struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	MatchID   string `json:"match_id"`
	Accepted  bool   `json:"accepted"`
}

// ScheduledCall status constants
const (
	ScheduleStatusRequested = "requested"
	ScheduleStatusConfirmed = "confirmed"
	ScheduleStatusCancelled = "cancelled"
)

// ScheduleRequest asks the scheduling backend to set up a later call with a peer
type ScheduleRequest struct {
	RequesterID    string         `json:"requester_id"`
	PeerID         string         `json:"peer_id"`
	MatchID        string         `json:"match_id"`
	ConnectionType ConnectionType `json:"connection_type"`
	Purpose        string         `json:"purpose,omitempty"`
}

// ScheduledCall is the stored form of a schedule request
type ScheduledCall struct {
	ID             gocql.UUID `json:"id" cql:"id"`
	PairKey        string     `json:"pair_key" cql:"pair_key"`
	RequesterID    string     `json:"requester_id" cql:"requester_id"`
	PeerID         string     `json:"peer_id" cql:"peer_id"`
	MatchID        string     `json:"match_id" cql:"match_id"`
	ConnectionType string     `json:"connection_type" cql:"connection_type"`
	Purpose        string     `json:"purpose" cql:"purpose"`
	Status         string     `json:"status" cql:"status"`
	CreatedAt      time.Time  `json:"created_at" cql:"created_at"`
}
