package models

import (
	"fmt"
	"strings"
)

// ConnectionType is the professional networking category of a desired match
type ConnectionType string

// ConnectionType values
const (
	ConnectionB2B           ConnectionType = "b2b"
	ConnectionCollaboration ConnectionType = "collaboration"
	ConnectionMentorship    ConnectionType = "mentorship"
	ConnectionInvestment    ConnectionType = "investment"
)

// ConnectionTypes lists every supported connection type
var ConnectionTypes = []ConnectionType{
	ConnectionB2B,
	ConnectionCollaboration,
	ConnectionMentorship,
	ConnectionInvestment,
}

// ParseConnectionType validates a raw connection type
func ParseConnectionType(raw string) (ConnectionType, error) {
	ct := ConnectionType(strings.ToLower(strings.TrimSpace(raw)))
	if !ct.Valid() {
		return "", fmt.Errorf("unknown connection type %q", raw)
	}
	return ct, nil
}

// Valid reports whether the connection type is part of the closed set
func (c ConnectionType) Valid() bool {
	switch c {
	case ConnectionB2B, ConnectionCollaboration, ConnectionMentorship, ConnectionInvestment:
		return true
	}
	return false
}

// Label is the display label used by clients
func (c ConnectionType) Label() string {
	switch c {
	case ConnectionB2B:
		return "B2B"
	case ConnectionCollaboration:
		return "Collaboration"
	case ConnectionMentorship:
		return "Mentorship"
	case ConnectionInvestment:
		return "Investment"
	}
	return ""
}

// QueueKind distinguishes casual queues from professional ones
type QueueKind string

// QueueKind values
const (
	QueueCasual       QueueKind = "casual"
	QueueProfessional QueueKind = "professional"
)

// ParseQueueKind validates a raw queue kind; "formal" is an alias of professional
func ParseQueueKind(raw string) (QueueKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "casual":
		return QueueCasual, nil
	case "professional", "formal":
		return QueueProfessional, nil
	}
	return "", fmt.Errorf("unknown queue kind %q", raw)
}

// Valid reports whether the queue kind is known
func (k QueueKind) Valid() bool {
	return k == QueueCasual || k == QueueProfessional
}

// CallType is the "type" parameter carried to call and schedule destinations
func CallType(kind QueueKind, connectionType ConnectionType) string {
	if kind == QueueProfessional {
		return string(connectionType)
	}
	return string(QueueCasual)
}

// QueueState is the lifecycle state of a queue session
type QueueState string

// QueueState values
const (
	StateIdle       QueueState = "idle"
	StateSearching  QueueState = "searching"
	StateMatchFound QueueState = "match_found"
	StateTerminated QueueState = "terminated"
)
