package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8431", cfg.HTTPAddr)
	assert.Equal(t, "Member", cfg.MemberRole)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.Database().MaxConns)
}

func TestLoadPriceIDs(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("STRIPE_PRICE_IDS", "price_30d,price_90d,price_1y")
	t.Setenv("DISCORD_MEMBER_ROLE", "Void")
	t.Setenv("LOG_DEV", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"price_30d", "price_90d", "price_1y"}, cfg.StripePriceIDs)
	assert.Equal(t, "Void", cfg.MemberRole)
	assert.True(t, cfg.Logger().Dev)
}

func TestServerRequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.ValidateServer())
}

func TestLoadDatabaseOnly(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://migrate@db:5432/voidsight")
	t.Setenv("DATABASE_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://migrate@db:5432/voidsight", cfg.Database().DSN)
	assert.Equal(t, "UTC", cfg.Database().TimeZone)
}

func TestLoadRejectsBadNumber(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("RATE_LIMIT_BURST", "many")
	_, err := Load()
	assert.Error(t, err)
}
