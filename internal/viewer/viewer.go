package viewer

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/techgyan/techgyan-backend/internal/models"
)

// Viewer is the identity a request acts as. The zero value is the
// anonymous viewer; read-side resolvers must tolerate it by returning
// neutral defaults instead of failing.
type Viewer struct {
	User *models.User
}

func Anonymous() Viewer {
	return Viewer{}
}

func (v Viewer) Authenticated() bool {
	return v.User != nil
}

// Key returns the viewer's user key, or "" when anonymous.
func (v Viewer) Key() string {
	if v.User == nil {
		return ""
	}
	return v.User.Key
}

type ctxKey struct{}

func NewContext(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, ctxKey{}, v)
}

// FromContext returns the viewer attached to ctx, anonymous if none.
func FromContext(ctx context.Context) Viewer {
	if v, ok := ctx.Value(ctxKey{}).(Viewer); ok {
		return v
	}
	return Anonymous()
}

// FromFiber returns the viewer resolved by the identity middleware.
func FromFiber(c *fiber.Ctx) Viewer {
	if v, ok := c.Locals("viewer").(Viewer); ok {
		return v
	}
	return Anonymous()
}
