package models

import "time"

// SocketRequest is the envelope every authenticated socket event carries
type SocketRequest struct {
	Token   string `json:"token"`
	MatchID string `json:"match_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`

	QueueKind      string `json:"queue_kind,omitempty"`
	ConnectionType string `json:"connection_type,omitempty"`
	Purpose        string `json:"purpose,omitempty"`
	Description    string `json:"description,omitempty"`
}

// SocketResponse acknowledges a socket event
type SocketResponse struct {
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Snapshot  *QueueSnapshot `json:"snapshot,omitempty"`
	Timestamp string         `json:"timestamp"`
	SocketID  string         `json:"socket_id"`
	Event     string         `json:"event"`
}

// ConnectionError represents error response for both HTTP and socket callers
type ConnectionError struct {
	Status    string                 `json:"status"`
	ErrorCode string                 `json:"error_code"`
	ErrorType string                 `json:"error_type"`
	Field     string                 `json:"field,omitempty"`
	Message   string                 `json:"message"`
	Retry     bool                   `json:"retry"`
	RetryPath string                 `json:"retry_path,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
	SocketID  string                 `json:"socket_id,omitempty"`
	Event     string                 `json:"event,omitempty"`
}

// Identity is the authenticated caller as resolved from a bearer token
type Identity struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// CallToken is what a client needs to join the managed video-call SDK
type CallToken struct {
	Token     string    `json:"token"`
	APIKey    string    `json:"api_key"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Generic response structures
type HeartbeatResponse struct {
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
}

type WelcomeResponse struct {
	Success    bool                   `json:"success"`
	Status     string                 `json:"status"`
	Message    string                 `json:"message"`
	ServerInfo map[string]interface{} `json:"server_info"`
}

// HealthCheckResponse represents health check response
type HealthCheckResponse struct {
	Success   bool              `json:"success"`
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// Error codes and types
const (
	// Error codes
	ErrorCodeMissingField      = "MISSING_FIELD"
	ErrorCodeInvalidFormat     = "INVALID_FORMAT"
	ErrorCodeInvalidSession    = "INVALID_SESSION"
	ErrorCodeInvalidTransition = "INVALID_TRANSITION"
	ErrorCodeAlreadyQueued     = "ALREADY_QUEUED"
	ErrorCodeNotFound          = "NOT_FOUND"
	ErrorCodeUpstream          = "UPSTREAM_UNAVAILABLE"
	ErrorCodeConfiguration     = "CONFIGURATION_ERROR"
	ErrorCodeInternal          = "INTERNAL_ERROR"

	// Error types
	ErrorTypeField          = "FIELD_ERROR"
	ErrorTypeFormat         = "FORMAT_ERROR"
	ErrorTypeAuthentication = "AUTHENTICATION_ERROR"
	ErrorTypeState          = "STATE_ERROR"
	ErrorTypeValidation     = "VALIDATION_ERROR"
	ErrorTypeSystem         = "SYSTEM_ERROR"
)
