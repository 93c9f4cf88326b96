package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/identity"
)

// RequireCaller admits requests carrying a bearer token or a session.
func RequireCaller(rs *Resolver, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return guard(rs.Resolve, logger)
}

// RequireSession admits browser sessions only.
func RequireSession(rs *Resolver, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return guard(rs.ResolveSession, logger)
}

func guard(resolve func(*http.Request) (*identity.Caller, error), logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := resolve(r)
			if err != nil {
				if errors.Is(err, ErrUnauthorized) {
					writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
					return
				}
				logger.Errorw("resolve caller failed", "path", r.URL.Path, "err", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "DB error"})
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithCaller(r.Context(), c)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
