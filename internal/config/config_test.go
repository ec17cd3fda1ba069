package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(20), cfg.Checkout.TaxRatePercent)
	assert.Equal(t, int64(599), cfg.Checkout.ShippingFee)
	assert.Equal(t, "redis", cfg.Queue.Driver)
	assert.Equal(t, "local", cfg.Storage.DocumentProvider)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SHIPPING_FEE_CENTS", "1000")
	t.Setenv("OPERATOR_EMAILS", "a@example.com, b@example.com")
	t.Setenv("QUEUE_DRIVER", "kafka")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(1000), cfg.Checkout.ShippingFee)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Email.OperatorEmails)
	assert.Equal(t, "kafka", cfg.Queue.Driver)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"short jwt secret", func(c *Config) { c.JWT.Secret = "short" }, "JWT_SECRET"},
		{"smtp without host", func(c *Config) { c.Email.Provider = "smtp" }, "SMTP_HOST"},
		{"unknown mail provider", func(c *Config) { c.Email.Provider = "pigeon" }, "EMAIL_PROVIDER"},
		{"cloudinary without url", func(c *Config) { c.Storage.DocumentProvider = "cloudinary" }, "CLOUDINARY_URL"},
		{"unknown queue", func(c *Config) { c.Queue.Driver = "sqs" }, "QUEUE_DRIVER"},
		{"negative shipping", func(c *Config) { c.Checkout.ShippingFee = -1 }, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
