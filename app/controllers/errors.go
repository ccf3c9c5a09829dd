package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"matchcall/app/models"
	"matchcall/app/services"
)

// ErrorView maps a service error onto the status code and body clients see.
// retryPath is echoed back when the failure is worth retrying.
func ErrorView(err error, retryPath string) (int, models.ConnectionError) {
	view := models.ConnectionError{
		Status:    "error",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	var status int
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		status = fiber.StatusUnauthorized
		view.ErrorCode = models.ErrorCodeInvalidSession
		view.ErrorType = models.ErrorTypeAuthentication
		view.Message = "please sign in"
	case errors.Is(err, services.ErrAlreadyQueued):
		status = fiber.StatusConflict
		view.ErrorCode = models.ErrorCodeAlreadyQueued
		view.ErrorType = models.ErrorTypeState
		view.Message = err.Error()
	case errors.Is(err, services.ErrInvalidTransition):
		status = fiber.StatusConflict
		view.ErrorCode = models.ErrorCodeInvalidTransition
		view.ErrorType = models.ErrorTypeState
		view.Message = err.Error()
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrProfileNotFound):
		status = fiber.StatusNotFound
		view.ErrorCode = models.ErrorCodeNotFound
		view.ErrorType = models.ErrorTypeValidation
		view.Message = err.Error()
	case errors.Is(err, services.ErrInvalidInput):
		status = fiber.StatusBadRequest
		view.ErrorCode = models.ErrorCodeInvalidFormat
		view.ErrorType = models.ErrorTypeValidation
		view.Message = err.Error()
	case errors.Is(err, services.ErrUpstreamUnavailable):
		status = fiber.StatusServiceUnavailable
		view.ErrorCode = models.ErrorCodeUpstream
		view.ErrorType = models.ErrorTypeSystem
		view.Message = "a required service is unavailable, please try again"
		view.Retry = true
		view.RetryPath = retryPath
	case errors.Is(err, services.ErrConfiguration):
		status = fiber.StatusInternalServerError
		view.ErrorCode = models.ErrorCodeConfiguration
		view.ErrorType = models.ErrorTypeSystem
		view.Message = "something went wrong, please try again"
		view.Retry = true
		view.RetryPath = retryPath
	default:
		status = fiber.StatusInternalServerError
		view.ErrorCode = models.ErrorCodeInternal
		view.ErrorType = models.ErrorTypeSystem
		view.Message = "something went wrong, please try again"
		view.Retry = true
		view.RetryPath = retryPath
	}
	return status, view
}

func respondError(ctx *fiber.Ctx, err error) error {
	status, view := ErrorView(err, ctx.OriginalURL())
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed", "method", ctx.Method(), "path", ctx.Path(), "error", err)
	}
	return ctx.Status(status).JSON(view)
}

func badRequest(ctx *fiber.Ctx, field, message string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(models.ConnectionError{
		Status:    "error",
		ErrorCode: models.ErrorCodeMissingField,
		ErrorType: models.ErrorTypeField,
		Field:     field,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", services.ErrInvalidInput, fmt.Sprintf(format, args...))
}
