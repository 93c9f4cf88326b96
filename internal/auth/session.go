package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/user/entity"
)

const SessionCookieName = "voidsight_session"

var ErrNoSession = errors.New("no session found")

// SessionClaims is the payload of the signed session cookie.
type SessionClaims struct {
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session cookies. Sessions are stateless;
// roles are not stored in the cookie and are loaded per request instead.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	issuer string
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration, secure bool, issuer string) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secure, issuer: issuer, now: time.Now}
}

// Sign returns a signed session token for p.
func (s *Sessions) Sign(p entity.Profile) (string, error) {
	now := s.now()
	claims := SessionClaims{
		Name:   p.Name,
		Avatar: p.Avatar,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   p.DiscordID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses a session token, rejecting anything not signed by us.
func (s *Sessions) Verify(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}

// Issue signs a session for p and sets it on w.
func (s *Sessions) Issue(w http.ResponseWriter, p entity.Profile) error {
	raw, err := s.Sign(p)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    raw,
		Path:     "/",
		Expires:  s.now().Add(s.ttl),
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// FromRequest returns the verified session carried by r's cookie.
func (s *Sessions) FromRequest(r *http.Request) (*SessionClaims, error) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}
	return s.Verify(c.Value)
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
