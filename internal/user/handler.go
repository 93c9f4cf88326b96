package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/identity"
)

// Handler exposes the session view of the user directory.
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SessionResponse is the materialized session returned to the dashboard.
type SessionResponse struct {
	DiscordID string   `json:"discordId"`
	Name      string   `json:"name"`
	Image     string   `json:"image,omitempty"`
	Roles     []string `json:"roles"`
	Premium   bool     `json:"premium"`
}

// Session returns the signed-in user with roles attached from the directory.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	c := identity.FromContext(r.Context())
	if c == nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	u, err := h.svc.Get(r.Context(), c.DiscordID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
			return
		}
		h.logger.Warnw("load session user failed", "discord_id", c.DiscordID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "DB error"})
		return
	}
	resp := SessionResponse{
		DiscordID: u.DiscordID,
		Name:      u.DiscordName,
		Roles:     []string(u.Roles),
		Premium:   u.Premium,
	}
	// the directory avatar is refreshed at every login; the claim may be older
	if u.Avatar != nil && *u.Avatar != "" {
		resp.Image = *u.Avatar
	} else {
		resp.Image = c.Avatar
	}
	if resp.Roles == nil {
		resp.Roles = []string{}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
