// Package identity carries the resolved caller through a request context.
package identity

import "context"

// Via names how a caller was authenticated.
type Via string

const (
	ViaBearer  Via = "bearer"
	ViaSession Via = "session"
)

// Caller is the authenticated principal of a request.
type Caller struct {
	DiscordID string
	Name      string
	Avatar    string
	Roles     []string
	Via       Via
}

// HasRole reports whether role is in the caller's role list.
func (c *Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type ctxKey struct{}

func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the caller stored by the auth middleware, or nil.
func FromContext(ctx context.Context) *Caller {
	c, _ := ctx.Value(ctxKey{}).(*Caller)
	return c
}
