package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"matchcall/app/middlewares"
	"matchcall/app/models"
	"matchcall/app/services"
)

// QueueManager is the session registry as seen by HTTP and socket callers
type QueueManager interface {
	Join(ctx context.Context, opts services.QueueOptions) (models.QueueSnapshot, error)
	Snapshot(ctx context.Context, userID string) (models.QueueSnapshot, error)
	Accept(ctx context.Context, userID, matchID string) (models.NavigationEvent, error)
	Decline(ctx context.Context, userID, matchID string) error
	Schedule(ctx context.Context, userID, peerUserID string) (models.NavigationEvent, error)
	Leave(ctx context.Context, userID string) (models.NavigationEvent, error)
}

// QueueController handles the match queue endpoints
type QueueController struct {
	queues QueueManager
}

// NewQueueController creates a new queue controller instance
func NewQueueController(queues QueueManager) *QueueController {
	return &QueueController{queues: queues}
}

// QueueOptionsFromRequest validates a join request into session options
func QueueOptionsFromRequest(userID string, req models.JoinQueueRequest) (services.QueueOptions, error) {
	kind, err := models.ParseQueueKind(req.QueueKind)
	if err != nil {
		return services.QueueOptions{}, invalidInput("%v", err)
	}
	opts := services.QueueOptions{UserID: userID, QueueKind: kind}
	if kind == models.QueueProfessional {
		ct, err := models.ParseConnectionType(req.ConnectionType)
		if err != nil {
			return services.QueueOptions{}, invalidInput("%v", err)
		}
		opts.ConnectionType = ct
		opts.Purpose = req.Purpose
		opts.Description = req.Description
	} else if req.Purpose != "" || req.Description != "" {
		return services.QueueOptions{}, invalidInput("purpose and description are only allowed on professional queues")
	}
	return opts, nil
}

// Join enters the caller into a queue
func (q *QueueController) Join(ctx *fiber.Ctx) error {
	identity, ok := middlewares.IdentityFrom(ctx)
	if !ok {
		return respondError(ctx, services.ErrUnauthenticated)
	}

	var req models.JoinQueueRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "", "Invalid request body")
	}
	if req.QueueKind == "" {
		return badRequest(ctx, "queue_kind", "queue_kind is required")
	}

	opts, err := QueueOptionsFromRequest(identity.UserID, req)
	if err != nil {
		return respondError(ctx, err)
	}

	snap, err := q.queues.Join(ctx.UserContext(), opts)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"status":   "success",
		"snapshot": snap,
	})
}

// State returns the caller's queue session
func (q *QueueController) State(ctx *fiber.Ctx) error {
	identity, ok := middlewares.IdentityFrom(ctx)
	if !ok {
		return respondError(ctx, services.ErrUnauthenticated)
	}

	snap, err := q.queues.Snapshot(ctx.UserContext(), identity.UserID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"status":   "success",
		"snapshot": snap,
	})
}

// Accept accepts the pending candidate
func (q *QueueController) Accept(ctx *fiber.Ctx) error {
	identity, req, err := q.matchAction(ctx)
	if err != nil {
		return err
	}
	if identity == nil {
		return nil
	}

	event, err := q.queues.Accept(ctx.UserContext(), identity.UserID, req.MatchID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"status":     "success",
		"navigation": event,
	})
}

// Decline declines the pending candidate
func (q *QueueController) Decline(ctx *fiber.Ctx) error {
	identity, req, err := q.matchAction(ctx)
	if err != nil {
		return err
	}
	if identity == nil {
		return nil
	}

	if err := q.queues.Decline(ctx.UserContext(), identity.UserID, req.MatchID); err != nil {
		return respondError(ctx, err)
	}
	snap, err := q.queues.Snapshot(ctx.UserContext(), identity.UserID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"status":   "success",
		"snapshot": snap,
	})
}

// Schedule requests a later call with the pending peer
func (q *QueueController) Schedule(ctx *fiber.Ctx) error {
	identity, ok := middlewares.IdentityFrom(ctx)
	if !ok {
		return respondError(ctx, services.ErrUnauthenticated)
	}

	var req models.ScheduleActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return badRequest(ctx, "", "Invalid request body")
	}
	if req.UserID == "" {
		return badRequest(ctx, "user_id", "user_id is required")
	}

	event, err := q.queues.Schedule(ctx.UserContext(), identity.UserID, req.UserID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"status":     "success",
		"navigation": event,
	})
}

// Leave ends the caller's queue session
func (q *QueueController) Leave(ctx *fiber.Ctx) error {
	identity, ok := middlewares.IdentityFrom(ctx)
	if !ok {
		return respondError(ctx, services.ErrUnauthenticated)
	}

	event, err := q.queues.Leave(ctx.UserContext(), identity.UserID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"status":     "success",
		"navigation": event,
	})
}

// matchAction parses accept/decline requests. A nil identity with a nil error
// means the response has already been written.
func (q *QueueController) matchAction(ctx *fiber.Ctx) (*models.Identity, models.MatchActionRequest, error) {
	var req models.MatchActionRequest
	identity, ok := middlewares.IdentityFrom(ctx)
	if !ok {
		return nil, req, respondError(ctx, services.ErrUnauthenticated)
	}
	if err := ctx.BodyParser(&req); err != nil {
		return nil, req, badRequest(ctx, "", "Invalid request body")
	}
	if req.MatchID == "" {
		return nil, req, badRequest(ctx, "match_id", "match_id is required")
	}
	return identity, req, nil
}
