package middlewares

import (
	"crypto/subtle"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"matchcall/app/models"
	"matchcall/app/utils"
)

// IdentityKey is the fiber.Ctx local holding the authenticated *models.Identity
const IdentityKey = "identity"

// JWTMiddleware validates the bearer identity token and stores the caller in c.Locals
func JWTMiddleware(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, models.ErrorCodeMissingField, "Authorization header is required")
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, models.ErrorCodeInvalidFormat, "Invalid authorization header format")
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		claims, err := utils.VerifyIdentityToken(secret, tokenString)
		if err != nil {
			slog.Debug("identity token rejected", "path", c.Path(), "error", err)
			return unauthorized(c, models.ErrorCodeInvalidSession, "please sign in")
		}

		c.Locals(IdentityKey, &models.Identity{
			UserID: claims.UserID,
			Name:   claims.Name,
			Avatar: claims.Avatar,
		})
		return c.Next()
	}
}

// IdentityFrom returns the identity stored by JWTMiddleware
func IdentityFrom(c *fiber.Ctx) (*models.Identity, bool) {
	identity, ok := c.Locals(IdentityKey).(*models.Identity)
	return identity, ok && identity != nil && identity.UserID != ""
}

// FeedKeyMiddleware guards the matcher webhooks with a shared key
func FeedKeyMiddleware(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		given := c.Get("X-Feed-Key")
		if key == "" || subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			return unauthorized(c, models.ErrorCodeInvalidSession, "invalid feed key")
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ConnectionError{
		Status:    "error",
		ErrorCode: code,
		ErrorType: models.ErrorTypeAuthentication,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
