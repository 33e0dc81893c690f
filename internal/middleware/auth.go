// Package middleware provides HTTP middleware and the shared structured logger.
package middleware

import (
	"context"
	"strings"

	"studyhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier resolves an access token to the user it was issued for.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (uint, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthRequired enforces a valid, unrevoked access token and stores the user ID in c.Locals("userID").
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return models.RespondWithError(c, models.NewNotAuthenticatedError())
		}
		return authenticate(c, verifier, token)
	}
}

// OptionalAuth records the user when a valid token is present and lets anonymous requests through.
func OptionalAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return c.Next()
		}
		userID, err := verifier.VerifyToken(c.UserContext(), token)
		if err == nil {
			setUser(c, userID)
		}
		return c.Next()
	}
}

// WebSocketAuthRequired accepts the token from the "token" query parameter before the Authorization header.
func WebSocketAuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			var ok bool
			token, ok = BearerToken(c)
			if !ok {
				return models.RespondWithError(c, models.NewNotAuthenticatedError())
			}
		}
		return authenticate(c, verifier, token)
	}
}

func authenticate(c *fiber.Ctx, verifier TokenVerifier, token string) error {
	userID, err := verifier.VerifyToken(c.UserContext(), token)
	if err != nil || userID == 0 {
		return models.RespondWithError(c, &models.AppError{
			Code:    models.CodeNotAuthenticated,
			Message: "Invalid or expired token",
		})
	}
	setUser(c, userID)
	return c.Next()
}

func setUser(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	c.SetUserContext(WithUserID(c.UserContext(), userID))
}

// CurrentUserID returns the authenticated user, or 0 for anonymous requests.
func CurrentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}
