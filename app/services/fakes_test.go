package services

import (
	"context"
	"sync"

	"matchcall/app/models"
)

type fakeNavigator struct {
	mu     sync.Mutex
	events []models.NavigationEvent
	users  []string
	err    error
}

func (f *fakeNavigator) Navigate(_ context.Context, userID string, event models.NavigationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
	f.events = append(f.events, event)
	return f.err
}

func (f *fakeNavigator) Events() []models.NavigationEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.NavigationEvent(nil), f.events...)
}

type fakeMatching struct {
	mu          sync.Mutex
	tickets     []models.QueueTicket
	responses   []models.MatchResponse
	withdrawn   []string
	enqueueErr  error
	respondErr  error
	withdrawErr error
}

func (f *fakeMatching) Enqueue(_ context.Context, ticket models.QueueTicket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.tickets = append(f.tickets, ticket)
	return nil
}

func (f *fakeMatching) Withdraw(_ context.Context, sessionID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.withdrawn = append(f.withdrawn, userID)
	return f.withdrawErr
}

func (f *fakeMatching) Respond(_ context.Context, response models.MatchResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.respondErr != nil {
		return f.respondErr
	}
	f.responses = append(f.responses, response)
	return nil
}

type fakeScheduler struct {
	requests []models.ScheduleRequest
	err      error
}

func (f *fakeScheduler) RequestSchedule(_ context.Context, req models.ScheduleRequest) (*models.ScheduledCall, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, req)
	return &models.ScheduledCall{RequesterID: req.RequesterID, PeerID: req.PeerID, Status: models.ScheduleStatusRequested}, nil
}

type fakeProfiles struct {
	profiles map[string]*models.UserProfile
}

func (f *fakeProfiles) Lookup(_ context.Context, userID string) (*models.UserProfile, error) {
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, ErrProfileNotFound
}

type fakePresence struct {
	online map[string]bool
}

func (f *fakePresence) IsOnline(userID string) bool { return f.online[userID] }

type fakeStore struct {
	mu    sync.Mutex
	saved map[string]models.QueueSnapshot
	err   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: map[string]models.QueueSnapshot{}}
}

func (f *fakeStore) SaveSnapshot(_ context.Context, snap models.QueueSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved[snap.UserID] = snap
	return nil
}

func (f *fakeStore) LoadSnapshot(_ context.Context, userID string) (*models.QueueSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.saved[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &snap, nil
}

func (f *fakeStore) Saved(userID string) (models.QueueSnapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.saved[userID]
	return snap, ok
}

type pushed struct {
	userID string
	event  string
	data   interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	pushes []pushed
}

func (f *fakeNotifier) Notify(userID, event string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, pushed{userID: userID, event: event, data: data})
}

func (f *fakeNotifier) Events(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.pushes {
		if p.userID == userID {
			out = append(out, p.event)
		}
	}
	return out
}

func testRoutes() *RouteTable {
	routes, err := NewRouteTable(RoutePaths{Call: "/call", Schedule: "/schedule", Leave: "/dashboard"})
	if err != nil {
		panic(err)
	}
	return routes
}
