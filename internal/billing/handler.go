package billing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/identity"
)

// webhook payloads are small; Stripe caps them well below this
const maxWebhookBytes = 64 << 10

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type checkoutRequest struct {
	PriceID string `json:"priceId"`
}

// Plans lists the purchasable price ids.
func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"plans": h.svc.Plans()})
}

// Checkout opens a hosted checkout for the signed-in user.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	c := identity.FromContext(r.Context())
	if c == nil {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	var body checkoutRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
		return
	}
	url, err := h.svc.Checkout(r.Context(), c.DiscordID, body.PriceID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPrice):
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid price"})
		case errors.Is(err, ErrAccountNotFound):
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
		case errors.Is(err, ErrBillingDisabled):
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Billing unavailable"})
		default:
			h.logger.Errorw("checkout failed", "discord_id", c.DiscordID, "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Checkout failed"})
		}
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// Webhook receives provider events. The raw body is needed for signature
// verification so it is read before any decoding.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid body"})
		return
	}
	ev, err := h.svc.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, ErrBadSignature):
			h.logger.Warnw("webhook signature rejected", "err", err)
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid signature"})
			return
		case errors.Is(err, ErrBillingDisabled):
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Billing unavailable"})
			return
		case errors.Is(err, ErrNoCustomer):
			// acknowledged anyway; a retry would not find the user either
			h.logger.Warnw("webhook for unknown customer", "event", ev.ID, "type", ev.Type, "customer", ev.CustomerID)
		case errors.Is(err, ErrMalformedEvent):
			// signed by Stripe but unreadable; a retry carries the same body
			h.logger.Warnw("webhook event not decodable", "event", ev.ID, "type", ev.Type, "err", err)
		default:
			h.logger.Errorw("webhook processing failed", "err", err)
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "DB error"})
			return
		}
	} else {
		h.logger.Infow("webhook processed", "event", ev.ID, "type", ev.Type, "customer", ev.CustomerID)
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
