package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-voidsight/pkg/utilities"
)

const (
	stateCookieName = "voidsight_oauth_state"
	stateTTL        = 10 * time.Minute
)

// Directory is the sign-in hook of the user directory.
type Directory interface {
	SignIn(ctx context.Context, p entity.Profile) (*entity.User, error)
}

// Handler serves the browser login flow.
type Handler struct {
	provider Provider
	users    Directory
	sessions *Sessions
	logger   *zap.SugaredLogger

	// redirect targets relative to the site root
	afterLogin string
	loginPage  string
}

func NewHandler(p Provider, users Directory, sessions *Sessions, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		provider:   p,
		users:      users,
		sessions:   sessions,
		logger:     logger,
		afterLogin: "/dashboard",
		loginPage:  "/login",
	}
}

// Login starts the OAuth flow with a fresh state bound to a short-lived cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state := utilities.NewKSUID()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int(stateTTL.Seconds()),
		Secure:   h.sessions.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the OAuth flow: it upserts the directory row and
// issues the session cookie.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(q.Get("state"))) != 1 {
		h.logger.Warnw("oauth state mismatch", "remote", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Path: "/auth", MaxAge: -1})

	if errCode := q.Get("error"); errCode != "" {
		// access_denied means the user cancelled; let them try again
		h.logger.Debugw("oauth error returned", "error", errCode)
		http.Redirect(w, r, h.loginPage, http.StatusSeeOther)
		return
	}

	profile, err := h.provider.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		h.logger.Warnw("discord exchange failed", "err", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Identity provider error"})
		return
	}
	if _, err := h.users.SignIn(r.Context(), *profile); err != nil {
		h.logger.Errorw("sign in failed", "discord_id", profile.DiscordID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "DB error"})
		return
	}
	if err := h.sessions.Issue(w, *profile); err != nil {
		h.logger.Errorw("issue session failed", "discord_id", profile.DiscordID, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session error"})
		return
	}
	h.logger.Infow("user signed in", "discord_id", profile.DiscordID)
	http.Redirect(w, r, h.afterLogin, http.StatusSeeOther)
}

// Logout expires the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
