package token

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/identity"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// GenerateResponse carries the token; it is shown to the user once.
type GenerateResponse struct {
	Token string `json:"token"`
}

// Generate issues a new bearer token. Only browser sessions may call it.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	c := identity.FromContext(r.Context())
	if c == nil || c.Via != identity.ViaSession {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	tok, err := h.svc.Generate(r.Context(), c.DiscordID)
	if err != nil {
		h.logger.Errorw("token generation failed", "discord_id", c.DiscordID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "DB error"})
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	h.writeJSON(w, http.StatusOK, GenerateResponse{Token: tok})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
