package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/billing")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_123")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("GIFT_TRIAL_TTL", "")
	t.Setenv("STRIPE_RATE_LIMIT_RPS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "50051", cfg.GRPCPort)
	assert.Equal(t, DefaultGiftTrialTTL, cfg.GiftTrialTTL)
	assert.Equal(t, DefaultStripeRateLimit, cfg.StripeRateLimitRP)
}

func TestLoadConfig_ParsesDurations(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GIFT_TRIAL_TTL", "90m")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.GiftTrialTTL)
}

func TestLoadConfig_RejectsBadDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GIFT_TRIAL_TTL", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "Stripe Secret Key")
}
