package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcall/app/models"
)

func TestHealth(t *testing.T) {
	app := fiber.New()
	SetupRoutes(app, Dependencies{
		JWTSecret: []byte("s"),
		HealthChecks: map[string]HealthCheck{
			"redis":     func(context.Context) error { return nil },
			"cassandra": func(context.Context) error { return errors.New("no hosts available") },
		},
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var body models.HealthCheckResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "ok", body.Checks["redis"])
	assert.Equal(t, "error: no hosts available", body.Checks["cassandra"])
}

func TestVersionAndProtectedRoutes(t *testing.T) {
	app := fiber.New()
	SetupRoutes(app, Dependencies{AppName: "matchcall", AppVersion: "1.2.3", JWTSecret: []byte("s")})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/version", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "1.2.3", body["version"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/anything", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
