package services

import (
	"errors"
	"fmt"

	"matchcall/app/models"
)

var (
	ErrUnauthenticated     = errors.New("please sign in")
	ErrConfiguration       = errors.New("configuration error")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
	ErrInvalidInput        = errors.New("invalid input")
	ErrSessionNotFound     = errors.New("queue session not found")
	ErrAlreadyQueued       = errors.New("already in a queue")
	ErrProfileNotFound     = errors.New("profile not found")

	ErrMissingCallAPIKey    = &ConfigError{Key: "CALL_API_KEY"}
	ErrMissingCallAPISecret = &ConfigError{Key: "CALL_API_SECRET"}
)

// TransitionError is returned when an action is not allowed in the current state
type TransitionError struct {
	Action string
	State  models.QueueState
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s in state %s: %s", e.Action, e.State, e.Reason)
	}
	return fmt.Sprintf("cannot %s in state %s", e.Action, e.State)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ConfigError reports a missing or invalid configuration value
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s is not set", e.Key)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// UpstreamError wraps a failure from an external collaborator
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrUpstreamUnavailable, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

func inputError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
