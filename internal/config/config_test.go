package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("STRIPE_SECRET", "sk_test_1")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_1")
	t.Setenv("AUTH_JWT_SECRET", "jwt")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment.Name)
	assert.Equal(t, "0.0.0.0:9500", cfg.Address())
	assert.Equal(t, "eur", cfg.Stripe.Currency)
	assert.Equal(t, int64(10), cfg.RateLimit.CheckoutPerMinute)
	assert.Equal(t, "http://localhost:3000", cfg.HTTP.FrontendURL)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("STRIPE_CURRENCY", "usd")
	t.Setenv("RATE_LIMIT_CHECKOUT_PER_MINUTE", "3")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
	assert.Equal(t, "usd", cfg.Stripe.Currency)
	assert.Equal(t, int64(3), cfg.RateLimit.CheckoutPerMinute)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		set   map[string]string
	}{
		{name: "missing database url", unset: "DATABASE_URL"},
		{name: "missing stripe secret", unset: "STRIPE_SECRET"},
		{name: "missing webhook secret", unset: "STRIPE_WEBHOOK_SECRET"},
		{name: "missing jwt secret", unset: "AUTH_JWT_SECRET"},
		{name: "unknown driver", set: map[string]string{"DATABASE_DRIVER": "postgres"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			if tt.unset != "" {
				t.Setenv(tt.unset, "")
			}
			for k, v := range tt.set {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
