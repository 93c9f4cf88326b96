package router

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/auth"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/billing"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/bot"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/setting"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/token"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/user"
)

// Deps bundles the handlers and shared services the routes are built from.
type Deps struct {
	Logger   *zap.SugaredLogger
	DB       *sql.DB
	Resolver *auth.Resolver
	Limiter  *RateLimiter
	Metrics  *Metrics

	Auth    *auth.Handler
	Users   *user.Handler
	Config  *setting.Handler
	Tokens  *token.Handler
	Bot     *bot.Handler
	Billing *billing.Handler
}

// RegisterRoutes mounts HTTP handlers on the standard library's http.ServeMux
// and wraps the mux with the global middleware stack.
func RegisterRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()

	caller := auth.RequireCaller(d.Resolver, d.Logger)
	session := auth.RequireSession(d.Resolver, d.Logger)
	limit := func(group string) func(http.Handler) http.Handler {
		if d.Limiter == nil {
			return func(h http.Handler) http.Handler { return h }
		}
		return d.Limiter.Limit(group)
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if d.DB != nil {
			if err := d.DB.PingContext(r.Context()); err != nil {
				d.Logger.Warnw("health check db ping failed", "err", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	// browser sign-in
	mux.HandleFunc("GET /auth/discord/login", d.Auth.Login)
	mux.HandleFunc("GET /auth/discord/callback", d.Auth.Callback)
	mux.Handle("GET /auth/session", session(http.HandlerFunc(d.Users.Session)))
	mux.HandleFunc("POST /auth/logout", d.Auth.Logout)

	// configuration document, for the dashboard and the mod
	mux.Handle("GET /config", chain(http.HandlerFunc(d.Config.Get), limit("config"), caller))
	mux.Handle("POST /config", chain(http.HandlerFunc(d.Config.Post), limit("config"), caller))

	mux.Handle("POST /token/generate", chain(http.HandlerFunc(d.Tokens.Generate), limit("token"), session))

	mux.Handle("POST /bot/sync-roles", chain(http.HandlerFunc(d.Bot.SyncRoles), limit("bot")))

	mux.HandleFunc("GET /billing/plans", d.Billing.Plans)
	mux.Handle("POST /stripe/checkout", chain(http.HandlerFunc(d.Billing.Checkout), limit("stripe"), session))
	mux.Handle("POST /stripe/webhook", chain(http.HandlerFunc(d.Billing.Webhook), limit("stripe")))

	global := []func(http.Handler) http.Handler{RequestIDMiddleware(), LoggingMiddleware(d.Logger)}
	if d.Metrics != nil {
		global = append(global, d.Metrics.Middleware())
	}
	global = append(global, SecurityHeadersMiddleware())
	return chain(mux, global...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
