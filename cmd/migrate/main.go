package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/config"
	tokenrepo "github.com/ovaphlow/pitchfork/service-voidsight/internal/token/repo"
	userrepo "github.com/ovaphlow/pitchfork/service-voidsight/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-voidsight/pkg/database"
	"github.com/ovaphlow/pitchfork/service-voidsight/pkg/utilities"
)

// migrate creates the users and user_tokens tables. It is idempotent.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
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

	db, err := database.ConnectX(cfg.Database())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := userrepo.NewUserRepo(db).EnsureTable(ctx); err != nil {
		sugar.Fatalf("ensure users: %v", err)
	}
	if err := tokenrepo.NewTokenRepo(db).EnsureTable(ctx); err != nil {
		sugar.Fatalf("ensure user_tokens: %v", err)
	}
	sugar.Info("schema is up to date")
}
