package setting

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/identity"
)

const maxBodyBytes = 1 << 20

// Handler contains dependencies for handling configuration endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

// NewHandler constructs a new Handler.
func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Get returns the caller's configuration with a _meta envelope.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c := identity.FromContext(r.Context())
	if c == nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	res, err := h.svc.Read(r.Context(), c)
	if err != nil {
		h.writeError(w, c, err)
		return
	}
	h.writeResult(w, res)
}

// Post merges a partial configuration into the stored one.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	c := identity.FromContext(r.Context())
	if c == nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	var body any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		h.logger.Debugw("invalid config payload", "discord_id", c.DiscordID, "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
		return
	}
	incoming, ok := body.(map[string]any)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
		return
	}
	res, err := h.svc.Write(r.Context(), c, incoming)
	if err != nil {
		h.writeError(w, c, err)
		return
	}
	h.writeResult(w, res)
}

func (h *Handler) writeResult(w http.ResponseWriter, res *Result) {
	out := make(map[string]any, len(res.Config)+1)
	for k, v := range res.Config {
		out[k] = v
	}
	out["_meta"] = res.Meta
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) writeError(w http.ResponseWriter, c *identity.Caller, err error) {
	switch {
	case errors.Is(err, ErrInvalidBody):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
	case errors.Is(err, ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
	default:
		h.logger.Errorw("config request failed", "discord_id", c.DiscordID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "DB error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
