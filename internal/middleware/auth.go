package middleware

import (
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/techgyan/techgyan-backend/internal/config"
	"github.com/techgyan/techgyan-backend/internal/dto"
	"github.com/techgyan/techgyan-backend/internal/models"
	"github.com/techgyan/techgyan-backend/internal/viewer"
	"gorm.io/gorm"
)

// JWTProtected rejects requests without a valid access token. Used on
// routes that make no sense for anonymous callers (uploads).
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// Identity resolves the request's viewer from the Authorization header
// and stores it in Locals. The GraphQL endpoint serves anonymous
// callers too, so a missing or invalid token degrades to the anonymous
// viewer instead of failing the request.
func Identity(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("viewer", resolveViewer(c, cfg, db))
		return c.Next()
	}
}

func resolveViewer(c *fiber.Ctx, cfg *config.Config, db *gorm.DB) viewer.Viewer {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return viewer.Anonymous()
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return viewer.Anonymous()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return viewer.Anonymous()
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return viewer.Anonymous()
	}

	var user models.User
	if err := db.Where("key = ?", sub).First(&user).Error; err != nil {
		return viewer.Anonymous()
	}
	return viewer.Viewer{User: &user}
}
