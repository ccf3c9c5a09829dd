package routes

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"matchcall/app/controllers"
	"matchcall/app/middlewares"
	"matchcall/app/models"
)

// HealthCheck probes one backing service
type HealthCheck func(ctx context.Context) error

// Dependencies are the handlers and settings the HTTP surface is built from
type Dependencies struct {
	AppName    string
	AppVersion string
	JWTSecret  []byte
	FeedKey    string

	Queue     *controllers.QueueController
	Auth      *controllers.AuthController
	Messaging *controllers.MessagingController

	HealthChecks map[string]HealthCheck
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		names := make([]string, 0, len(deps.HealthChecks))
		for name := range deps.HealthChecks {
			names = append(names, name)
		}
		sort.Strings(names)

		resp := models.HealthCheckResponse{
			Success:   true,
			Status:    "ok",
			Checks:    map[string]string{},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		for _, name := range names {
			if err := deps.HealthChecks[name](ctx); err != nil {
				resp.Checks[name] = "error: " + err.Error()
				resp.Success = false
				resp.Status = "degraded"
			} else {
				resp.Checks[name] = "ok"
			}
		}

		if !resp.Success {
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
		return c.JSON(resp)
	})

	// API version endpoint
	app.Get("/api/version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"version":   deps.AppVersion,
			"name":      deps.AppName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := app.Group("/api", middlewares.JWTMiddleware(deps.JWTSecret))

	if deps.Auth != nil {
		api.Get("/auth/me", deps.Auth.Me)
		api.Post("/call/token", deps.Auth.CallToken)
		api.Get("/profiles/:id", deps.Auth.Profile)
		api.Get("/schedule", deps.Auth.ScheduledCalls)
	}

	if deps.Queue != nil {
		api.Get("/queue", deps.Queue.State)
		api.Post("/queue/join", deps.Queue.Join)
		api.Post("/queue/accept", deps.Queue.Accept)
		api.Post("/queue/decline", deps.Queue.Decline)
		api.Post("/queue/schedule", deps.Queue.Schedule)
		api.Post("/queue/leave", deps.Queue.Leave)
	}

	if deps.Messaging != nil {
		internal := app.Group("/internal", middlewares.FeedKeyMiddleware(deps.FeedKey))
		internal.Post("/feed/candidate", deps.Messaging.Candidate)
		internal.Post("/feed/wait", deps.Messaging.Wait)
	}
}
