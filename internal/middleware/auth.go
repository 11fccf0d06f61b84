package middleware

import (
	"strconv"
	"strings"

	"neighborly/internal/config"
	"neighborly/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired enforces bearer-token authentication. On success the verified
// principal's user ID is stored in c.Locals("userID"); all failures map to
// UNAUTHENTICATED before any handler logic runs.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return models.RespondWithError(c, models.NewUnauthenticatedError("Authorization header required"))
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return models.RespondWithError(c, models.NewUnauthenticatedError("Invalid authorization header format"))
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return models.RespondWithError(c, models.NewUnauthenticatedError("Invalid or expired token"))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.RespondWithError(c, models.NewUnauthenticatedError("Invalid token claims"))
	}

	// User ID travels in the "sub" claim (RFC 7519 subject).
	subClaim, ok := claims["sub"]
	if !ok {
		return models.RespondWithError(c, models.NewUnauthenticatedError("Invalid token structure - missing subject"))
	}
	subStr, ok := subClaim.(string)
	if !ok {
		return models.RespondWithError(c, models.NewUnauthenticatedError("Invalid token subject type"))
	}
	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return models.RespondWithError(c, models.NewUnauthenticatedError("Invalid user ID in token"))
	}

	c.Locals("userID", uint(userIDVal))

	return c.Next()
}
