package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"matchcall/app/models"
)

// Socket events pushed to queue clients
const (
	EventQueueMatch = "queue:match"
	EventQueueWait  = "queue:wait"
	EventQueueState = "queue:state"
	EventNavigate   = "navigate"
)

// SessionStore persists snapshots so other nodes can observe queue state
type SessionStore interface {
	SaveSnapshot(ctx context.Context, snap models.QueueSnapshot) error
	LoadSnapshot(ctx context.Context, userID string) (*models.QueueSnapshot, error)
}

// ProfileLookup resolves the display profile of a peer
type ProfileLookup interface {
	Lookup(ctx context.Context, userID string) (*models.UserProfile, error)
}

// Presence reports whether a user has a connected client
type Presence interface {
	IsOnline(userID string) bool
}

// Notifier pushes an event to every client of a user
type Notifier interface {
	Notify(userID, event string, data interface{})
}

// SessionService owns the single active queue session of each user
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*QueueSession

	caps     Capabilities
	store    SessionStore
	profiles ProfileLookup
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

// SessionDeps are the optional collaborators of the registry; nil fields are skipped
type SessionDeps struct {
	Store    SessionStore
	Profiles ProfileLookup
	Notifier Notifier
}

// NewSessionService creates a new session registry. caps is the template handed
// to every session it creates.
func NewSessionService(caps Capabilities, deps SessionDeps) *SessionService {
	logger := caps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		sessions: make(map[string]*QueueSession),
		caps:     caps,
		store:    deps.Store,
		profiles: deps.Profiles,
		notifier: deps.Notifier,
		log:      logger.With("component", "session_registry"),
		now:      time.Now,
	}
}

// Join creates and starts a session for the user. Joining the same queue again
// returns the running session.
func (s *SessionService) Join(ctx context.Context, opts QueueOptions) (models.QueueSnapshot, error) {
	s.mu.Lock()
	if existing, ok := s.sessions[opts.UserID]; ok {
		s.mu.Unlock()
		current := existing.Options()
		if current.QueueKind == opts.QueueKind && current.ConnectionType == opts.ConnectionType {
			return existing.Snapshot(), nil
		}
		return models.QueueSnapshot{}, fmt.Errorf("%w: %s queue", ErrAlreadyQueued, current.QueueKind)
	}

	session, err := NewQueueSession(opts, s.caps)
	if err != nil {
		s.mu.Unlock()
		return models.QueueSnapshot{}, err
	}
	s.sessions[opts.UserID] = session
	s.mu.Unlock()

	if err := session.Start(ctx); err != nil {
		s.discard(session)
		return models.QueueSnapshot{}, err
	}

	snap := session.Snapshot()
	s.persist(ctx, snap)
	s.notify(opts.UserID, EventQueueState, snap)
	return snap, nil
}

// Offer hands a candidate from the matching feed to the user's session
func (s *SessionService) Offer(ctx context.Context, userID string, candidate models.MatchCandidate) error {
	session, err := s.session(userID)
	if err != nil {
		return err
	}

	if candidate.Profile == nil && candidate.PeerID != "" && s.profiles != nil {
		profile, err := s.profiles.Lookup(ctx, candidate.PeerID)
		if err != nil {
			s.log.Warn("peer profile unavailable", "peer_id", candidate.PeerID, "error", err)
		} else {
			candidate.Profile = profile
		}
	}

	if err := session.OfferCandidate(candidate); err != nil {
		return err
	}

	snap := session.Snapshot()
	s.persist(ctx, snap)
	s.notify(userID, EventQueueMatch, snap.Candidate)
	return nil
}

// UpdateWait applies a wait estimate to the user's session
func (s *SessionService) UpdateWait(ctx context.Context, userID string, seconds int) error {
	session, err := s.session(userID)
	if err != nil {
		return err
	}
	if err := session.UpdateWaitEstimate(seconds); err != nil {
		return err
	}

	snap := session.Snapshot()
	s.persist(ctx, snap)
	s.notify(userID, EventQueueWait, models.WaitUpdate{
		EstimatedWaitSeconds: snap.EstimatedWaitSeconds,
		EstimatedWait:        snap.EstimatedWait,
		Timestamp:            s.now().UTC().Format(time.RFC3339),
	})
	return nil
}

// Accept accepts the pending candidate of the user's session
func (s *SessionService) Accept(ctx context.Context, userID, matchID string) (models.NavigationEvent, error) {
	session, err := s.session(userID)
	if err != nil {
		return models.NavigationEvent{}, err
	}
	event, err := session.Accept(ctx, matchID)
	s.settle(ctx, session)
	return event, err
}

// Decline declines the pending candidate of the user's session
func (s *SessionService) Decline(ctx context.Context, userID, matchID string) error {
	session, err := s.session(userID)
	if err != nil {
		return err
	}
	if err := session.Decline(ctx, matchID); err != nil {
		return err
	}
	s.settle(ctx, session)
	return nil
}

// Schedule requests a later call with the pending peer
func (s *SessionService) Schedule(ctx context.Context, userID, peerUserID string) (models.NavigationEvent, error) {
	session, err := s.session(userID)
	if err != nil {
		return models.NavigationEvent{}, err
	}
	event, err := session.Schedule(ctx, peerUserID)
	s.settle(ctx, session)
	return event, err
}

// Leave ends the user's session
func (s *SessionService) Leave(ctx context.Context, userID string) (models.NavigationEvent, error) {
	session, err := s.session(userID)
	if err != nil {
		return models.NavigationEvent{}, err
	}
	event, err := session.Leave(ctx)
	s.settle(ctx, session)
	return event, err
}

// Snapshot returns the user's live session, or the last stored snapshot once
// the session has ended
func (s *SessionService) Snapshot(ctx context.Context, userID string) (models.QueueSnapshot, error) {
	if session, err := s.session(userID); err == nil {
		return session.Snapshot(), nil
	}
	if s.store != nil {
		snap, err := s.store.LoadSnapshot(ctx, userID)
		if err == nil {
			return *snap, nil
		}
		if !errors.Is(err, ErrSessionNotFound) {
			return models.QueueSnapshot{}, &UpstreamError{Op: "load snapshot", Err: err}
		}
	}
	return models.QueueSnapshot{}, ErrSessionNotFound
}

// ActiveSessions returns every session that has not terminated
func (s *SessionService) ActiveSessions() []*QueueSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*QueueSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	return out
}

// WaitKey groups sessions that share a wait estimate: queue:wait:<kind>[:<type>]
func WaitKey(opts QueueOptions) string {
	if opts.QueueKind == models.QueueProfessional && opts.ConnectionType != "" {
		return fmt.Sprintf("queue:wait:%s:%s", opts.QueueKind, opts.ConnectionType)
	}
	return fmt.Sprintf("queue:wait:%s", opts.QueueKind)
}

// ExpireIdle leaves sessions that have not changed for maxAge and whose user
// has no connected client. It returns how many sessions were released.
func (s *SessionService) ExpireIdle(ctx context.Context, maxAge time.Duration, presence Presence) int {
	cutoff := s.now().UTC().Add(-maxAge)
	expired := 0
	for _, session := range s.ActiveSessions() {
		snap := session.Snapshot()
		if snap.UpdatedAt.After(cutoff) {
			continue
		}
		if presence != nil && presence.IsOnline(snap.UserID) {
			continue
		}
		if _, err := session.Leave(ctx); err != nil && !errors.Is(err, ErrInvalidTransition) {
			s.log.Warn("expire idle session failed", "user_id", snap.UserID, "error", err)
			continue
		}
		s.settle(ctx, session)
		expired++
	}
	return expired
}

func (s *SessionService) session(userID string) (*QueueSession, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// settle persists the session and drops it from the registry once terminated
func (s *SessionService) settle(ctx context.Context, session *QueueSession) {
	snap := session.Snapshot()
	if snap.State == models.StateTerminated {
		s.discard(session)
	}
	s.persist(ctx, snap)
	s.notify(snap.UserID, EventQueueState, snap)
}

func (s *SessionService) discard(session *QueueSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[session.UserID()] == session {
		delete(s.sessions, session.UserID())
	}
}

func (s *SessionService) persist(ctx context.Context, snap models.QueueSnapshot) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		s.log.Warn("snapshot not persisted", "user_id", snap.UserID, "error", err)
	}
}

func (s *SessionService) notify(userID, event string, data interface{}) {
	if s.notifier != nil {
		s.notifier.Notify(userID, event, data)
	}
}
