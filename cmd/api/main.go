package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/auth"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/billing"
	billingrepo "github.com/ovaphlow/pitchfork/service-voidsight/internal/billing/repo"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/bot"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/config"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/router"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/setting"
	settingrepo "github.com/ovaphlow/pitchfork/service-voidsight/internal/setting/repo"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/token"
	tokenrepo "github.com/ovaphlow/pitchfork/service-voidsight/internal/token/repo"
	"github.com/ovaphlow/pitchfork/service-voidsight/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-voidsight/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-voidsight/pkg/database"
	"github.com/ovaphlow/pitchfork/service-voidsight/pkg/utilities"
)

func main() {
	// best-effort: without a .env the real environment is used
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err == nil {
		err = cfg.ValidateServer()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg, err := utilities.Init(cfg.Logger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Infow("starting service-voidsight", "addr", cfg.HTTPAddr)

	db, err := database.ConnectX(cfg.Database())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	users := user.NewUserService(userrepo.NewUserRepo(db))
	tokens := token.NewService(tokenrepo.NewTokenRepo(db))
	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure, "voidsight")
	provider := auth.NewDiscordProvider(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.PublicURL+"/auth/discord/callback")

	var gateway billing.Gateway
	if cfg.StripeSecretKey != "" {
		gateway = billing.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		sugar.Warn("STRIPE_SECRET_KEY not set; billing endpoints are disabled")
	}
	if cfg.BotSyncSecret == "" {
		sugar.Warn("BOT_SYNC_SECRET not set; bot role sync rejects every request")
	}

	payments := billing.NewService(billingrepo.NewAccountRepo(db), gateway, cfg.StripePriceIDs, cfg.PublicURL)

	limiter := router.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 2*time.Minute)
	defer limiter.Stop()

	handler := router.RegisterRoutes(router.Deps{
		Logger:   sugar,
		DB:       db.DB,
		Resolver: auth.NewResolver(tokens, users, sessions),
		Limiter:  limiter,
		Metrics:  router.NewMetrics(),
		Auth:     auth.NewHandler(provider, users, sessions, sugar),
		Users:    user.NewHandler(users, sugar),
		Config:   setting.NewHandler(setting.NewService(settingrepo.NewRepo(db.DB), cfg.MemberRole), sugar),
		Tokens:   token.NewHandler(tokens, sugar),
		Bot:      bot.NewHandler(bot.NewService(users, sugar), cfg.BotSyncSecret, sugar),
		Billing:  billing.NewHandler(payments, sugar),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Info("service is running; press Ctrl+C to stop")

	<-ctx.Done()
	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
