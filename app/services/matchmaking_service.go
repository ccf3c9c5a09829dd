package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"matchcall/app/models"
	"matchcall/app/utils"
)

// Matcher channel names. Keys are structured with ':' and sanitized before use
// as pub/sub channels.
var (
	MatchRequestChannel = utils.SanitizeChannelKey("match:requests")
	FeedChannelPrefix   = utils.SanitizeChannelKey("match:feed:")
	FeedPattern         = FeedChannelPrefix + "*"
)

// Matcher actions
const (
	MatcherActionEnqueue  = "enqueue"
	MatcherActionWithdraw = "withdraw"
	MatcherActionRespond  = "respond"
)

// MatcherMessage is what the external matcher receives on MatchRequestChannel
type MatcherMessage struct {
	Action    string                `json:"action"`
	SessionID string                `json:"session_id"`
	UserID    string                `json:"user_id"`
	Ticket    *models.QueueTicket   `json:"ticket,omitempty"`
	Response  *models.MatchResponse `json:"response,omitempty"`
	SentAt    time.Time             `json:"sent_at"`
}

// Publisher sends a message on a pub/sub channel
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Subscriber delivers pub/sub messages until ctx is done
type Subscriber interface {
	PSubscribe(ctx context.Context, pattern string, handler func(channel, payload string)) error
}

// RedisMatchingService forwards queue actions to the external matcher
type RedisMatchingService struct {
	publisher Publisher
	now       func() time.Time
}

// NewRedisMatchingService creates a matching service publishing through publisher
func NewRedisMatchingService(publisher Publisher) *RedisMatchingService {
	return &RedisMatchingService{publisher: publisher, now: time.Now}
}

// FeedChannel is the channel the matcher uses to reach one user. Ids that
// contain ':' must also be sent as user_id in the payload.
func FeedChannel(userID string) string {
	return utils.SanitizeChannelKey("match:feed:" + userID)
}

func (m *RedisMatchingService) Enqueue(ctx context.Context, ticket models.QueueTicket) error {
	return m.publish(ctx, MatcherMessage{
		Action:    MatcherActionEnqueue,
		SessionID: ticket.SessionID,
		UserID:    ticket.UserID,
		Ticket:    &ticket,
	})
}

func (m *RedisMatchingService) Withdraw(ctx context.Context, sessionID, userID string) error {
	return m.publish(ctx, MatcherMessage{
		Action:    MatcherActionWithdraw,
		SessionID: sessionID,
		UserID:    userID,
	})
}

func (m *RedisMatchingService) Respond(ctx context.Context, response models.MatchResponse) error {
	return m.publish(ctx, MatcherMessage{
		Action:    MatcherActionRespond,
		SessionID: response.SessionID,
		UserID:    response.UserID,
		Response:  &response,
	})
}

func (m *RedisMatchingService) publish(ctx context.Context, msg MatcherMessage) error {
	msg.SentAt = m.now().UTC()
	if err := m.publisher.Publish(ctx, MatchRequestChannel, msg); err != nil {
		return fmt.Errorf("publish %s for %s: %w", msg.Action, msg.UserID, err)
	}
	return nil
}

// FeedSink receives decoded feed events
type FeedSink interface {
	Offer(ctx context.Context, userID string, candidate models.MatchCandidate) error
	UpdateWait(ctx context.Context, userID string, seconds int) error
}

// MatchFeed consumes candidates and wait estimates pushed by the matcher
type MatchFeed struct {
	subscriber Subscriber
	sink       FeedSink
	log        *slog.Logger
}

// NewMatchFeed creates a feed consumer
func NewMatchFeed(subscriber Subscriber, sink FeedSink, logger *slog.Logger) *MatchFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &MatchFeed{subscriber: subscriber, sink: sink, log: logger.With("component", "match_feed")}
}

// Run blocks, applying feed messages until ctx is cancelled
func (f *MatchFeed) Run(ctx context.Context) error {
	f.log.Info("listening for matcher feed", "pattern", FeedPattern)
	return f.subscriber.PSubscribe(ctx, FeedPattern, func(channel, payload string) {
		event, err := DecodeFeedEvent(channel, []byte(payload))
		if err != nil {
			f.log.Warn("dropping malformed feed message", "channel", channel, "error", err)
			return
		}
		if err := f.Apply(ctx, event); err != nil {
			f.log.Warn("feed event not applied", "user_id", event.UserID, "type", event.Type, "error", err)
		}
	})
}

// Apply routes one event to the owning session
func (f *MatchFeed) Apply(ctx context.Context, event models.FeedEvent) error {
	switch event.Type {
	case models.FeedEventCandidate:
		return f.sink.Offer(ctx, event.UserID, models.MatchCandidate{
			MatchID: event.MatchID,
			PeerID:  event.PeerID,
		})
	case models.FeedEventWait:
		if err := f.sink.UpdateWait(ctx, event.UserID, event.WaitSeconds); err != nil {
			return err
		}
		f.log.Debug("wait estimate applied", "user_id", event.UserID, "wait", describeWait(event.WaitSeconds))
		return nil
	}
	return inputError("unknown feed event type %q", event.Type)
}

// describeWait is used in logs when a wait estimate is applied
func describeWait(seconds int) string {
	formatted, err := utils.FormatDuration(seconds)
	if err != nil {
		return "unknown"
	}
	return formatted
}

// DecodeFeedEvent parses a matcher message. The user id defaults to the one
// encoded in the channel name; a sanitized suffix cannot be mapped back to the
// original id, so such channels must carry user_id in the payload.
func DecodeFeedEvent(channel string, payload []byte) (models.FeedEvent, error) {
	var event models.FeedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return models.FeedEvent{}, inputError("feed payload: %v", err)
	}
	if event.UserID == "" && strings.HasPrefix(channel, FeedChannelPrefix) {
		suffix := strings.TrimPrefix(channel, FeedChannelPrefix)
		if strings.Contains(suffix, "__") {
			return models.FeedEvent{}, inputError("feed channel %s needs user_id in the payload", channel)
		}
		event.UserID = suffix
	}
	if err := ValidateFeedEvent(event); err != nil {
		return models.FeedEvent{}, err
	}
	return event, nil
}

// ValidateFeedEvent checks the fields each event type needs
func ValidateFeedEvent(event models.FeedEvent) error {
	if event.UserID == "" {
		return inputError("feed event has no user id")
	}
	switch event.Type {
	case models.FeedEventCandidate:
		if event.MatchID == "" {
			return inputError("candidate event has no match id")
		}
	case models.FeedEventWait:
		if event.WaitSeconds < 0 {
			return inputError("wait estimate must not be negative, got %d", event.WaitSeconds)
		}
	default:
		return inputError("unknown feed event type %q", event.Type)
	}
	return nil
}
