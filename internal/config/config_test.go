package config

import (
	"testing"

	"github.com/Reacta/iugu-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaxSchedule(t *testing.T) {
	t.Run("empty yields empty schedule", func(t *testing.T) {
		schedule, err := ParseTaxSchedule("")
		require.NoError(t, err)
		assert.Empty(t, schedule)
	})

	t.Run("parses pairs", func(t *testing.T) {
		schedule, err := ParseTaxSchedule("1:0, 2:1.5,3:2")
		require.NoError(t, err)
		assert.Equal(t, domain.TaxSchedule{1: 0, 2: 1.5, 3: 2}, schedule)
	})

	t.Run("malformed entry", func(t *testing.T) {
		_, err := ParseTaxSchedule("1:0,bogus")
		require.Error(t, err)
	})

	t.Run("invalid count", func(t *testing.T) {
		_, err := ParseTaxSchedule("x:1")
		require.Error(t, err)
	})

	t.Run("invalid rate", func(t *testing.T) {
		_, err := ParseTaxSchedule("2:abc")
		require.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Gateway: GatewayConfig{
				AccountID:       "acc-123",
				APIKey:          "key",
				MaxInstallments: 12,
				TaxSchedule:     domain.TaxSchedule{2: 1.5},
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("missing account id", func(t *testing.T) {
		cfg := valid()
		cfg.Gateway.AccountID = ""
		require.Error(t, cfg.Validate())
	})

	t.Run("missing api key without secret", func(t *testing.T) {
		cfg := valid()
		cfg.Gateway.APIKey = ""
		require.Error(t, cfg.Validate())
	})

	t.Run("api key from secret backend is accepted", func(t *testing.T) {
		cfg := valid()
		cfg.Gateway.APIKey = ""
		cfg.Secrets.APIKeySecret = "iugu/api-key"
		require.NoError(t, cfg.Validate())
	})

	t.Run("negative max installments", func(t *testing.T) {
		cfg := valid()
		cfg.Gateway.MaxInstallments = -1
		require.Error(t, cfg.Validate())
	})

	t.Run("schedule entry beyond max installments", func(t *testing.T) {
		cfg := valid()
		cfg.Gateway.TaxSchedule = domain.TaxSchedule{13: 2}
		require.Error(t, cfg.Validate())
	})

	t.Run("negative rate", func(t *testing.T) {
		cfg := valid()
		cfg.Gateway.TaxSchedule = domain.TaxSchedule{2: -1}
		require.Error(t, cfg.Validate())
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IUGU_ACCOUNT_ID", "acc-123")
	t.Setenv("IUGU_API_KEY", "key")
	t.Setenv("IUGU_MAX_INSTALLMENTS", "6")
	t.Setenv("IUGU_TAX_SCHEDULE", "2:1,3:1.5")
	t.Setenv("IUGU_TEST_MODE", "false")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "acc-123", cfg.Gateway.AccountID)
	assert.Equal(t, 6, cfg.Gateway.MaxInstallments)
	assert.Equal(t, domain.TaxSchedule{2: 1, 3: 1.5}, cfg.Gateway.TaxSchedule)
	assert.False(t, cfg.Gateway.TestMode)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.iugu.com", cfg.Gateway.BaseURL)
}

func TestLoadFromEnv_MalformedSchedule(t *testing.T) {
	t.Setenv("IUGU_ACCOUNT_ID", "acc-123")
	t.Setenv("IUGU_API_KEY", "key")
	t.Setenv("IUGU_TAX_SCHEDULE", "nope")

	_, err := LoadFromEnv()
	require.Error(t, err)
}
