package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcall/app/middlewares"
	"matchcall/app/models"
	"matchcall/app/services"
	"matchcall/app/utils"
)

var testSecret = []byte("controller-secret")

type nopNavigator struct{}

func (nopNavigator) Navigate(context.Context, string, models.NavigationEvent) error { return nil }

type stubMatching struct {
	enqueueErr error
}

func (s *stubMatching) Enqueue(context.Context, models.QueueTicket) error { return s.enqueueErr }
func (s *stubMatching) Withdraw(context.Context, string, string) error    { return nil }
func (s *stubMatching) Respond(context.Context, models.MatchResponse) error {
	return nil
}

type stubScheduler struct{}

func (stubScheduler) RequestSchedule(_ context.Context, req models.ScheduleRequest) (*models.ScheduledCall, error) {
	return &models.ScheduledCall{RequesterID: req.RequesterID, PeerID: req.PeerID}, nil
}

type stubProfiles struct{}

func (stubProfiles) Lookup(_ context.Context, userID string) (*models.UserProfile, error) {
	if userID == "user_2" {
		return &models.UserProfile{UserID: "user_2", Name: "Grace Hopper"}, nil
	}
	return nil, services.ErrProfileNotFound
}

type testServer struct {
	app      *fiber.App
	matching *stubMatching
}

func newTestServer(t *testing.T, tokens CallTokenIssuer) *testServer {
	t.Helper()
	routes, err := services.NewRouteTable(services.RoutePaths{Call: "/call", Schedule: "/schedule", Leave: "/dashboard"})
	require.NoError(t, err)

	matching := &stubMatching{}
	registry := services.NewSessionService(services.Capabilities{
		Navigator:  nopNavigator{},
		Routes:     routes,
		Matching:   matching,
		Scheduling: stubScheduler{},
	}, services.SessionDeps{Profiles: stubProfiles{}})

	queue := NewQueueController(registry)
	auth := NewAuthController(tokens, stubProfiles{}, nil)
	feed := NewMessagingController(services.NewMatchFeed(nil, registry, nil))

	app := fiber.New()
	api := app.Group("/api", middlewares.JWTMiddleware(testSecret))
	api.Get("/auth/me", auth.Me)
	api.Post("/call/token", auth.CallToken)
	api.Get("/profiles/:id", auth.Profile)
	api.Get("/schedule", auth.ScheduledCalls)
	api.Post("/queue/join", queue.Join)
	api.Get("/queue", queue.State)
	api.Post("/queue/accept", queue.Accept)
	api.Post("/queue/decline", queue.Decline)
	api.Post("/queue/schedule", queue.Schedule)
	api.Post("/queue/leave", queue.Leave)

	internal := app.Group("/internal", middlewares.FeedKeyMiddleware("feed-key"))
	internal.Post("/feed/candidate", feed.Candidate)
	internal.Post("/feed/wait", feed.Wait)

	return &testServer{app: app, matching: matching}
}

func (s *testServer) do(t *testing.T, method, path, userID string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := utils.GenerateIdentityToken(testSecret, userID, "Test User", "", time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Feed-Key", "feed-key")

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestQueueFlowOverHTTP(t *testing.T) {
	s := newTestServer(t, services.NewCallTokenService("k", "s", time.Hour))

	status, body := s.do(t, http.MethodPost, "/api/queue/join", "user_1", models.JoinQueueRequest{
		QueueKind:      "professional",
		ConnectionType: "mentorship",
		Purpose:        "career advice",
	})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "searching", body["snapshot"].(map[string]interface{})["state"])

	status, _ = s.do(t, http.MethodPost, "/internal/feed/candidate", "", models.FeedEvent{UserID: "user_1", MatchID: "m1", PeerID: "user_2"})
	require.Equal(t, fiber.StatusAccepted, status)

	status, body = s.do(t, http.MethodGet, "/api/queue", "user_1", nil)
	require.Equal(t, fiber.StatusOK, status)
	candidate := body["snapshot"].(map[string]interface{})["candidate"].(map[string]interface{})
	assert.Equal(t, "m1", candidate["match_id"])
	assert.Equal(t, "Grace Hopper", candidate["profile"].(map[string]interface{})["name"])

	status, body = s.do(t, http.MethodPost, "/api/queue/accept", "user_1", models.MatchActionRequest{MatchID: "m2"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, models.ErrorCodeInvalidTransition, body["error_code"])

	status, body = s.do(t, http.MethodPost, "/api/queue/accept", "user_1", models.MatchActionRequest{MatchID: "m1"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "/call/m1?type=mentorship", body["navigation"].(map[string]interface{})["address"])

	status, _ = s.do(t, http.MethodPost, "/api/queue/leave", "user_1", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDeclineAndScheduleOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)

	status, _ := s.do(t, http.MethodPost, "/api/queue/join", "user_1", models.JoinQueueRequest{QueueKind: "formal", ConnectionType: "b2b"})
	require.Equal(t, fiber.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, "/internal/feed/candidate", "", models.FeedEvent{UserID: "user_1", MatchID: "m1", PeerID: "user_2"})
	require.Equal(t, fiber.StatusAccepted, status)

	status, body := s.do(t, http.MethodPost, "/api/queue/decline", "user_1", models.MatchActionRequest{MatchID: "m1"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "searching", body["snapshot"].(map[string]interface{})["state"])

	status, _ = s.do(t, http.MethodPost, "/internal/feed/wait", "", models.FeedEvent{UserID: "user_1", WaitSeconds: 75})
	require.Equal(t, fiber.StatusAccepted, status)
	status, body = s.do(t, http.MethodGet, "/api/queue", "user_1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "1:15", body["snapshot"].(map[string]interface{})["estimated_wait"])

	status, _ = s.do(t, http.MethodPost, "/internal/feed/candidate", "", models.FeedEvent{UserID: "user_1", MatchID: "m2", PeerID: "user_2"})
	require.Equal(t, fiber.StatusAccepted, status)

	status, body = s.do(t, http.MethodPost, "/api/queue/schedule", "user_1", models.ScheduleActionRequest{UserID: "user_2"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "/schedule/user_2?type=b2b", body["navigation"].(map[string]interface{})["address"])
}

func TestQueueRequestValidation(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, http.MethodPost, "/api/queue/join", "", models.JoinQueueRequest{QueueKind: "casual"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "please sign in", body["message"])

	status, body = s.do(t, http.MethodPost, "/api/queue/join", "user_1", models.JoinQueueRequest{})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "queue_kind", body["field"])

	status, _ = s.do(t, http.MethodPost, "/api/queue/join", "user_1", models.JoinQueueRequest{QueueKind: "professional", ConnectionType: "dating"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/queue/join", "user_1", models.JoinQueueRequest{QueueKind: "casual", Purpose: "hello"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = s.do(t, http.MethodPost, "/api/queue/accept", "user_1", models.MatchActionRequest{})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "match_id", body["field"])

	status, _ = s.do(t, http.MethodPost, "/internal/feed/wait", "", models.FeedEvent{UserID: "user_1", WaitSeconds: -1})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestUpstreamFailureIsRetryable(t *testing.T) {
	s := newTestServer(t, nil)
	s.matching.enqueueErr = errors.New("matcher unreachable")

	status, body := s.do(t, http.MethodPost, "/api/queue/join", "user_1", models.JoinQueueRequest{QueueKind: "casual"})
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, true, body["retry"])
	assert.Equal(t, "/api/queue/join", body["retry_path"])

	status, body = s.do(t, http.MethodPost, "/api/queue/join", "user_1", models.JoinQueueRequest{QueueKind: "professional", ConnectionType: "b2b"})
	assert.Equal(t, fiber.StatusServiceUnavailable, status, body)
}

func TestCallTokenEndpoint(t *testing.T) {
	s := newTestServer(t, services.NewCallTokenService("key_1", "secret_1", time.Hour))
	status, body := s.do(t, http.MethodPost, "/api/call/token", "user_1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "key_1", body["api_key"])
	assert.Equal(t, "user_1", body["user_id"])
	assert.Equal(t, "Test User", body["name"])
	assert.NotEmpty(t, body["token"])

	s = newTestServer(t, services.NewCallTokenService("", "secret_1", time.Hour))
	status, body = s.do(t, http.MethodPost, "/api/call/token", "user_1", nil)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, models.ErrorCodeConfiguration, body["error_code"])
	assert.Equal(t, true, body["retry"])
	assert.Equal(t, "/api/call/token", body["retry_path"])
}

func TestProfileAndMeEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, http.MethodGet, "/api/auth/me", "user_1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user_1", body["user"].(map[string]interface{})["user_id"])

	status, body = s.do(t, http.MethodGet, "/api/profiles/user_2", "user_1", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Grace Hopper", body["profile"].(map[string]interface{})["name"])

	status, _ = s.do(t, http.MethodGet, "/api/profiles/nobody", "user_1", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = s.do(t, http.MethodGet, "/api/schedule", "user_1", nil)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, models.ErrorCodeConfiguration, body["error_code"])
}

func TestErrorViewMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		retry  bool
	}{
		{services.ErrUnauthenticated, fiber.StatusUnauthorized, false},
		{&services.TransitionError{Action: "accept", State: models.StateSearching}, fiber.StatusConflict, false},
		{services.ErrAlreadyQueued, fiber.StatusConflict, false},
		{services.ErrSessionNotFound, fiber.StatusNotFound, false},
		{invalidInput("bad"), fiber.StatusBadRequest, false},
		{&services.UpstreamError{Op: "enqueue", Err: errors.New("x")}, fiber.StatusServiceUnavailable, true},
		{services.ErrMissingCallAPISecret, fiber.StatusInternalServerError, true},
		{errors.New("boom"), fiber.StatusInternalServerError, true},
	}
	for _, c := range cases {
		status, view := ErrorView(c.err, "/retry")
		assert.Equal(t, c.status, status, c.err.Error())
		assert.Equal(t, c.retry, view.Retry, c.err.Error())
		if c.retry {
			assert.Equal(t, "/retry", view.RetryPath)
		} else {
			assert.Empty(t, view.RetryPath)
		}
	}
}
