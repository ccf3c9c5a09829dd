package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"matchcall/app/models"
	"matchcall/app/utils"

	"github.com/google/uuid"
)

// Navigator moves a user's client to another view
type Navigator interface {
	Navigate(ctx context.Context, userID string, event models.NavigationEvent) error
}

// MatchingService is the external matcher a session forwards its actions to
type MatchingService interface {
	Enqueue(ctx context.Context, ticket models.QueueTicket) error
	Withdraw(ctx context.Context, sessionID, userID string) error
	Respond(ctx context.Context, response models.MatchResponse) error
}

// SchedulingService records requests for a call at a later time
type SchedulingService interface {
	RequestSchedule(ctx context.Context, req models.ScheduleRequest) (*models.ScheduledCall, error)
}

// QueueOptions describe what the user is queueing for
type QueueOptions struct {
	UserID         string
	QueueKind      models.QueueKind
	ConnectionType models.ConnectionType
	Purpose        string
	Description    string
}

// Capabilities are the collaborators a session drives
type Capabilities struct {
	Navigator  Navigator
	Routes     *RouteTable
	Matching   MatchingService
	Scheduling SchedulingService
	Logger     *slog.Logger
}

// QueueSession is the state machine of one user's stay in a queue.
// All transitions hold mu for their whole duration.
type QueueSession struct {
	mu sync.Mutex

	id   string
	opts QueueOptions
	caps Capabilities
	log  *slog.Logger
	now  func() time.Time

	state       models.QueueState
	candidate   *models.MatchCandidate
	waitSeconds int
	navigation  *models.NavigationEvent
	createdAt   time.Time
	updatedAt   time.Time
}

// NewQueueSession validates options and capabilities and returns an Idle session
func NewQueueSession(opts QueueOptions, caps Capabilities) (*QueueSession, error) {
	opts.UserID = strings.TrimSpace(opts.UserID)
	if opts.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if !opts.QueueKind.Valid() {
		return nil, &ConfigError{Key: "queue_kind", Reason: "unknown queue kind " + string(opts.QueueKind)}
	}

	switch opts.QueueKind {
	case models.QueueProfessional:
		if !opts.ConnectionType.Valid() {
			return nil, &ConfigError{Key: "connection_type", Reason: "unknown connection type " + string(opts.ConnectionType)}
		}
		if caps.Scheduling == nil {
			return nil, &ConfigError{Key: "scheduling", Reason: "professional queues need a scheduling service"}
		}
	case models.QueueCasual:
		if opts.ConnectionType != "" {
			return nil, inputError("connection type is only allowed on professional queues")
		}
		if opts.Purpose != "" || opts.Description != "" {
			return nil, inputError("purpose and description are only allowed on professional queues")
		}
	}

	if caps.Navigator == nil {
		return nil, &ConfigError{Key: "navigator"}
	}
	if caps.Routes == nil {
		return nil, &ConfigError{Key: "routes"}
	}
	if caps.Matching == nil {
		return nil, &ConfigError{Key: "matching"}
	}

	logger := caps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := time.Now().UTC()
	s := &QueueSession{
		id:        uuid.NewString(),
		opts:      opts,
		caps:      caps,
		now:       func() time.Time { return time.Now().UTC() },
		state:     models.StateIdle,
		createdAt: now,
		updatedAt: now,
	}
	s.log = logger.With("session_id", s.id, "user_id", opts.UserID, "queue_kind", string(opts.QueueKind))
	return s, nil
}

// ID returns the session id
func (s *QueueSession) ID() string { return s.id }

// UserID returns the owner of the session
func (s *QueueSession) UserID() string { return s.opts.UserID }

// Options returns what the session was created with
func (s *QueueSession) Options() QueueOptions { return s.opts }

// State returns the current state
func (s *QueueSession) State() models.QueueState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start forwards the queue ticket to the matcher and begins searching
func (s *QueueSession) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != models.StateIdle {
		return &TransitionError{Action: "start", State: s.state}
	}

	ticket := models.QueueTicket{
		SessionID:      s.id,
		UserID:         s.opts.UserID,
		QueueKind:      s.opts.QueueKind,
		ConnectionType: s.opts.ConnectionType,
		Purpose:        s.opts.Purpose,
		Description:    s.opts.Description,
		JoinedAt:       s.createdAt,
	}
	if err := s.caps.Matching.Enqueue(ctx, ticket); err != nil {
		return &UpstreamError{Op: "enqueue", Err: err}
	}

	s.setState(models.StateSearching)
	s.log.Info("queue search started")
	return nil
}

// OfferCandidate presents a match to the user. Only one candidate may be pending.
func (s *QueueSession) OfferCandidate(candidate models.MatchCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(candidate.MatchID) == "" {
		return inputError("candidate match id is required")
	}
	if s.state == models.StateMatchFound {
		return &TransitionError{Action: "offer candidate", State: s.state, Reason: "a candidate is already pending"}
	}
	if s.state != models.StateSearching {
		return &TransitionError{Action: "offer candidate", State: s.state}
	}

	if candidate.OfferedAt.IsZero() {
		candidate.OfferedAt = s.now()
	}
	s.candidate = &candidate
	s.setState(models.StateMatchFound)
	s.log.Info("match candidate offered", "match_id", candidate.MatchID)
	return nil
}

// UpdateWaitEstimate records the matcher's estimate; it never changes state
func (s *QueueSession) UpdateWaitEstimate(seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seconds < 0 {
		return inputError("wait estimate must not be negative, got %d", seconds)
	}
	if s.state != models.StateSearching && s.state != models.StateMatchFound {
		return &TransitionError{Action: "update wait estimate", State: s.state}
	}
	s.waitSeconds = seconds
	s.updatedAt = s.now()
	return nil
}

// Accept joins the pending match and ends the session with a call navigation
func (s *QueueSession) Accept(ctx context.Context, matchID string) (models.NavigationEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCandidate("accept", matchID); err != nil {
		return models.NavigationEvent{}, err
	}

	resp := models.MatchResponse{SessionID: s.id, UserID: s.opts.UserID, MatchID: matchID, Accepted: true}
	if err := s.caps.Matching.Respond(ctx, resp); err != nil {
		return models.NavigationEvent{}, &UpstreamError{Op: "accept match", Err: err}
	}

	event := s.caps.Routes.CallDestination(matchID, models.CallType(s.opts.QueueKind, s.opts.ConnectionType))
	s.terminate(ctx, event)
	s.log.Info("match accepted", "match_id", matchID)
	return event, nil
}

// Decline drops the pending match and goes straight back to searching
func (s *QueueSession) Decline(ctx context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkCandidate("decline", matchID); err != nil {
		return err
	}

	resp := models.MatchResponse{SessionID: s.id, UserID: s.opts.UserID, MatchID: matchID, Accepted: false}
	if err := s.caps.Matching.Respond(ctx, resp); err != nil {
		return &UpstreamError{Op: "decline match", Err: err}
	}

	s.candidate = nil
	s.setState(models.StateSearching)
	s.log.Info("match declined", "match_id", matchID)
	return nil
}

// Schedule books a later call with the pending peer. Professional queues only.
func (s *QueueSession) Schedule(ctx context.Context, peerUserID string) (models.NavigationEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.QueueKind != models.QueueProfessional {
		return models.NavigationEvent{}, &TransitionError{Action: "schedule", State: s.state, Reason: "only professional queues can schedule"}
	}
	if s.state != models.StateMatchFound {
		return models.NavigationEvent{}, &TransitionError{Action: "schedule", State: s.state}
	}
	if peerUserID == "" || s.candidate.PeerID != peerUserID {
		return models.NavigationEvent{}, &TransitionError{Action: "schedule", State: s.state, Reason: "user id does not match the pending candidate"}
	}

	req := models.ScheduleRequest{
		RequesterID:    s.opts.UserID,
		PeerID:         peerUserID,
		MatchID:        s.candidate.MatchID,
		ConnectionType: s.opts.ConnectionType,
		Purpose:        s.opts.Purpose,
	}
	if _, err := s.caps.Scheduling.RequestSchedule(ctx, req); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return models.NavigationEvent{}, err
		}
		return models.NavigationEvent{}, &UpstreamError{Op: "schedule call", Err: err}
	}

	event := s.caps.Routes.ScheduleDestination(peerUserID, string(s.opts.ConnectionType))
	s.terminate(ctx, event)
	s.log.Info("call scheduled", "peer_id", peerUserID)
	return event, nil
}

// Leave withdraws from the matcher and ends the session. It always releases
// the session, even if the withdrawal fails.
func (s *QueueSession) Leave(ctx context.Context) (models.NavigationEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == models.StateTerminated {
		return models.NavigationEvent{}, &TransitionError{Action: "leave", State: s.state}
	}

	if s.state != models.StateIdle {
		if err := s.caps.Matching.Withdraw(ctx, s.id, s.opts.UserID); err != nil {
			s.log.Warn("withdraw from matcher failed", "error", err)
		}
	}

	event := s.caps.Routes.LeaveDestination()
	s.terminate(ctx, event)
	s.log.Info("queue left")
	return event, nil
}

// Snapshot returns a copy of the session's current view
func (s *QueueSession) Snapshot() models.QueueSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	wait, _ := utils.FormatDuration(s.waitSeconds)
	snap := models.QueueSnapshot{
		SessionID:            s.id,
		UserID:               s.opts.UserID,
		QueueKind:            s.opts.QueueKind,
		ConnectionType:       s.opts.ConnectionType,
		Purpose:              s.opts.Purpose,
		Description:          s.opts.Description,
		State:                s.state,
		EstimatedWaitSeconds: s.waitSeconds,
		EstimatedWait:        wait,
		CreatedAt:            s.createdAt,
		UpdatedAt:            s.updatedAt,
	}
	if s.candidate != nil {
		c := *s.candidate
		snap.Candidate = &c
	}
	if s.navigation != nil {
		n := *s.navigation
		snap.Navigation = &n
	}
	return snap
}

func (s *QueueSession) checkCandidate(action, matchID string) error {
	if s.state != models.StateMatchFound {
		return &TransitionError{Action: action, State: s.state}
	}
	if matchID == "" || s.candidate.MatchID != matchID {
		return &TransitionError{Action: action, State: s.state, Reason: "match id does not match the pending candidate"}
	}
	return nil
}

// terminate commits the final state and emits the single navigation event.
// Delivery failures are logged; the event stays available on the snapshot.
func (s *QueueSession) terminate(ctx context.Context, event models.NavigationEvent) {
	s.navigation = &event
	s.setState(models.StateTerminated)
	if err := s.caps.Navigator.Navigate(ctx, s.opts.UserID, event); err != nil {
		s.log.Warn("navigation delivery failed", "address", event.Address, "error", err)
	}
}

func (s *QueueSession) setState(state models.QueueState) {
	s.state = state
	s.updatedAt = s.now()
}
