package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/inkhaven/blog-backend/internal/dto"
	"github.com/inkhaven/blog-backend/internal/store"
)

var errNoUserToken = errors.New("no user token in context")

// UserID extracts the authenticated user's id from the verified JWT that
// JWTProtected stashed in the request context.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return uuid.Nil, errNoUserToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errNoUserToken
	}
	sub, _ := claims["sub"].(string)
	return uuid.Parse(sub)
}

// RequireRole gates a route on the user's stored role, not the token claim,
// so a demotion takes effect before the access token expires.
func RequireRole(users store.UserStore, roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		userID, err := UserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		user, err := users.FindByID(c.Context(), userID)
		if err != nil || user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if _, ok := allowed[user.Role]; !ok {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Insufficient role",
			})
		}
		return c.Next()
	}
}
