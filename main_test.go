package main

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcall/app/models"
	"matchcall/app/routes"
)

func redisUp(context.Context) error { return nil }

func TestHealthSkipsBackendsThatNeverCameUp(t *testing.T) {
	checks := backendHealthChecks(redisUp, false, false)
	assert.Len(t, checks, 1)
	assert.NotContains(t, checks, "cassandra")
	assert.NotContains(t, checks, "mongo")

	app := fiber.New()
	routes.SetupRoutes(app, routes.Dependencies{JWTSecret: []byte("s"), HealthChecks: checks})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body models.HealthCheckResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, map[string]string{"redis": "ok"}, body.Checks)
}

func TestHealthProbesBackendsThatCameUp(t *testing.T) {
	checks := backendHealthChecks(redisUp, true, true)
	assert.Contains(t, checks, "cassandra")
	assert.Contains(t, checks, "mongo")
}
