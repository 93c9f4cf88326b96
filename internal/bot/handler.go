package bot

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type Handler struct {
	svc    *Service
	secret string
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, secret string, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, secret: secret, logger: logger}
}

type syncRequest struct {
	Secret  string          `json:"secret"`
	Members json.RawMessage `json:"members"`
}

// SyncRoles accepts a role snapshot pushed by the Discord bot.
func (h *Handler) SyncRoles(w http.ResponseWriter, r *http.Request) {
	var body syncRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<20)).Decode(&body); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
		return
	}
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(body.Secret), []byte(h.secret)) != 1 {
		h.logger.Warnw("bot sync rejected", "remote", r.RemoteAddr)
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var members []Member
	if len(body.Members) == 0 || body.Members[0] != '[' || json.Unmarshal(body.Members, &members) != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid members"})
		return
	}

	h.svc.Sync(r.Context(), members)
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "synced": len(members)})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
