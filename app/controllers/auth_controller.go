package controllers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"matchcall/app/middlewares"
	"matchcall/app/models"
	"matchcall/app/services"
)

// CallTokenIssuer issues video-call SDK tokens
type CallTokenIssuer interface {
	Issue(identity *models.Identity) (*models.CallToken, error)
}

// ScheduleLister lists the calls a user has asked for
type ScheduleLister interface {
	ListRequested(ctx context.Context, userID string, limit int) ([]models.ScheduledCall, error)
}

// AuthController serves the identity-bound endpoints: who am I, call tokens,
// peer profiles and scheduled calls
type AuthController struct {
	tokens    CallTokenIssuer
	profiles  services.ProfileLookup
	schedules ScheduleLister
}

// NewAuthController creates a new auth controller instance. profiles and schedules may be nil.
func NewAuthController(tokens CallTokenIssuer, profiles services.ProfileLookup, schedules ScheduleLister) *AuthController {
	return &AuthController{tokens: tokens, profiles: profiles, schedules: schedules}
}

// Me returns the authenticated identity
func (a *AuthController) Me(ctx *fiber.Ctx) error {
	identity, ok := middlewares.IdentityFrom(ctx)
	if !ok {
		return respondError(ctx, services.ErrUnauthenticated)
	}
	return ctx.JSON(fiber.Map{
		"status": "success",
		"user":   identity,
	})
}

// CallToken issues a token for the managed video-call SDK
func (a *AuthController) CallToken(ctx *fiber.Ctx) error {
	identity, _ := middlewares.IdentityFrom(ctx)
	token, err := a.tokens.Issue(identity)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(token)
}

// Profile returns the display profile of a user
func (a *AuthController) Profile(ctx *fiber.Ctx) error {
	if _, ok := middlewares.IdentityFrom(ctx); !ok {
		return respondError(ctx, services.ErrUnauthenticated)
	}
	if a.profiles == nil {
		return respondError(ctx, &services.ConfigError{Key: "MONGO_URI"})
	}

	profile, err := a.profiles.Lookup(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"status":  "success",
		"profile": profile,
	})
}

// ScheduledCalls lists the caller's requested calls
func (a *AuthController) ScheduledCalls(ctx *fiber.Ctx) error {
	identity, ok := middlewares.IdentityFrom(ctx)
	if !ok {
		return respondError(ctx, services.ErrUnauthenticated)
	}
	if a.schedules == nil {
		return respondError(ctx, &services.ConfigError{Key: "CASSANDRA_HOST"})
	}

	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))
	calls, err := a.schedules.ListRequested(ctx.UserContext(), identity.UserID, limit)
	if err != nil {
		return respondError(ctx, err)
	}
	if calls == nil {
		calls = []models.ScheduledCall{}
	}
	return ctx.JSON(fiber.Map{
		"status": "success",
		"calls":  calls,
	})
}
