// Package middleware provides authentication, logging and rate-limiting
// middleware for the application.
package middleware

import (
	"strconv"
	"strings"

	"inkwell/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired is a middleware that enforces authentication for protected routes.
// On success it stores the numeric user ID in c.Locals("userID") and the
// username in c.Locals("username"); the username is what post authorship is
// compared against.
func AuthRequired(c *fiber.Ctx) error {
	userID, username, err := parseBearer(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Locals("userID", userID)
	c.Locals("username", username)
	return c.Next()
}

// OptionalAuth attaches identity when a valid token is present but never
// rejects the request. Read endpoints use it so the visibility gate can
// distinguish an author viewing their own draft from an anonymous reader.
func OptionalAuth(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return c.Next()
	}
	userID, username, err := parseBearer(c)
	if err == nil {
		c.Locals("userID", userID)
		c.Locals("username", username)
	}
	return c.Next()
}

func parseBearer(c *fiber.Ctx) (uint, string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	// "sub" carries the numeric user ID per RFC 7519.
	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token structure - missing subject")
	}
	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}

	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return 0, "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token structure - missing username")
	}

	return uint(userID), username, nil
}
