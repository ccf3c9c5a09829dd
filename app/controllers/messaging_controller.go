package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"matchcall/app/models"
	"matchcall/app/services"
)

// FeedApplier routes matcher events to queue sessions
type FeedApplier interface {
	Apply(ctx context.Context, event models.FeedEvent) error
}

// MessagingController receives matcher pushes over HTTP, the webhook
// alternative to the Redis feed
type MessagingController struct {
	feed FeedApplier
}

// NewMessagingController creates a new messaging controller instance
func NewMessagingController(feed FeedApplier) *MessagingController {
	return &MessagingController{feed: feed}
}

// Candidate offers a match candidate to a user's session
func (m *MessagingController) Candidate(ctx *fiber.Ctx) error {
	return m.apply(ctx, models.FeedEventCandidate)
}

// Wait updates the wait estimate of a user's session
func (m *MessagingController) Wait(ctx *fiber.Ctx) error {
	return m.apply(ctx, models.FeedEventWait)
}

func (m *MessagingController) apply(ctx *fiber.Ctx, eventType string) error {
	var event models.FeedEvent
	if err := ctx.BodyParser(&event); err != nil {
		return badRequest(ctx, "", "Invalid request body")
	}
	event.Type = eventType

	if err := services.ValidateFeedEvent(event); err != nil {
		return respondError(ctx, err)
	}
	if err := m.feed.Apply(ctx.UserContext(), event); err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "accepted",
		"user_id": event.UserID,
		"type":    event.Type,
	})
}
