package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/identity"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/token"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/user"
)

var ErrUnauthorized = errors.New("unauthorized")

// TokenResolver maps a bearer token to its owner.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// RoleLoader returns the current role list of a user.
type RoleLoader interface {
	Roles(ctx context.Context, discordID string) ([]string, error)
}

// Resolver turns a request into a Caller: bearer token first, then session cookie.
type Resolver struct {
	tokens   TokenResolver
	roles    RoleLoader
	sessions *Sessions
}

func NewResolver(tokens TokenResolver, roles RoleLoader, sessions *Sessions) *Resolver {
	return &Resolver{tokens: tokens, roles: roles, sessions: sessions}
}

// Resolve accepts a bearer token or a browser session.
func (rs *Resolver) Resolve(r *http.Request) (*identity.Caller, error) {
	if raw, ok := bearerToken(r); ok {
		owner, err := rs.tokens.Resolve(r.Context(), raw)
		switch {
		case err == nil:
			roles, err := rs.loadRoles(r.Context(), owner)
			if err != nil {
				return nil, err
			}
			return &identity.Caller{DiscordID: owner, Roles: roles, Via: identity.ViaBearer}, nil
		case !errors.Is(err, token.ErrNotFound):
			return nil, err
		}
		// unknown token: the browser session may still identify the caller
	}
	return rs.ResolveSession(r)
}

// ResolveSession accepts only a browser session.
func (rs *Resolver) ResolveSession(r *http.Request) (*identity.Caller, error) {
	claims, err := rs.sessions.FromRequest(r)
	if err != nil {
		return nil, ErrUnauthorized
	}
	roles, err := rs.loadRoles(r.Context(), claims.Subject)
	if err != nil {
		return nil, err
	}
	return &identity.Caller{
		DiscordID: claims.Subject,
		Name:      claims.Name,
		Avatar:    claims.Avatar,
		Roles:     roles,
		Via:       identity.ViaSession,
	}, nil
}

// loadRoles treats a missing directory row as having no roles.
func (rs *Resolver) loadRoles(ctx context.Context, discordID string) ([]string, error) {
	roles, err := rs.roles.Roles(ctx, discordID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("load roles: %w", err)
	}
	return roles, nil
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < len("bearer ") || !strings.EqualFold(h[:len("bearer ")], "bearer ") {
		return "", false
	}
	t := strings.TrimSpace(h[len("bearer "):])
	return t, t != ""
}
