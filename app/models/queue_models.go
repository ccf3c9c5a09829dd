package models

import "time"

// NavigationKind identifies the destination family of a navigation event
type NavigationKind string

// NavigationKind values
const (
	NavigateCall     NavigationKind = "call"
	NavigateSchedule NavigationKind = "schedule"
	NavigateLeave    NavigationKind = "leave"
)

// NavigationEvent asks the client to move to another view/address
type NavigationEvent struct {
	Kind    NavigationKind    `json:"kind"`
	Path    string            `json:"path"`
	Query   map[string]string `json:"query,omitempty"`
	Address string            `json:"address"`
}

// QueueSnapshot is a read-only view of a queue session
type QueueSnapshot struct {
	SessionID            string           `json:"session_id"`
	UserID               string           `json:"user_id"`
	QueueKind            QueueKind        `json:"queue_kind"`
	ConnectionType       ConnectionType   `json:"connection_type,omitempty"`
	Purpose              string           `json:"purpose,omitempty"`
	Description          string           `json:"description,omitempty"`
	State                QueueState       `json:"state"`
	Candidate            *MatchCandidate  `json:"candidate,omitempty"`
	EstimatedWaitSeconds int              `json:"estimated_wait_seconds"`
	EstimatedWait        string           `json:"estimated_wait"`
	Navigation           *NavigationEvent `json:"navigation,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// JoinQueueRequest is the payload used to enter a queue
type JoinQueueRequest struct {
	QueueKind      string `json:"queue_kind"`
	ConnectionType string `json:"connection_type,omitempty"`
	Purpose        string `json:"purpose,omitempty"`
	Description    string `json:"description,omitempty"`
}

// MatchActionRequest carries the candidate id for accept/decline
type MatchActionRequest struct {
	MatchID string `json:"match_id"`
}

// ScheduleActionRequest carries the peer id for schedule
type ScheduleActionRequest struct {
	UserID string `json:"user_id"`
}

// Feed event types
const (
	FeedEventCandidate = "candidate"
	FeedEventWait      = "wait"
)

// FeedEvent is a message pushed by the external matching feed
type FeedEvent struct {
	Type        string `json:"type"`
	UserID      string `json:"user_id"`
	MatchID     string `json:"match_id,omitempty"`
	PeerID      string `json:"peer_id,omitempty"`
	WaitSeconds int    `json:"wait_seconds,omitempty"`
}

// WaitUpdate is pushed to clients when a wait estimate changes
type WaitUpdate struct {
	EstimatedWaitSeconds int    `json:"estimated_wait_seconds"`
	EstimatedWait        string `json:"estimated_wait"`
	Timestamp            string `json:"timestamp"`
}
