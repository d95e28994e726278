package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Reacta/iugu-gateway/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Gateway  GatewayConfig
	Logger   LoggerConfig
	Secrets  SecretsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// GatewayConfig holds the merchant's Iugu preferences. Read-only at
// transaction time.
type GatewayConfig struct {
	TestMode  bool
	AccountID string
	APIKey    string // resolved from Secrets when empty
	BaseURL   string

	MaxInstallments        int
	MinimumValue           float64
	InstallmentsWithoutTax int
	MinValueWithoutTax     float64
	TaxSchedule            domain.TaxSchedule

	WebhookURL string
}

// InstallmentConfig projects the offer-calculation preferences
func (c *GatewayConfig) InstallmentConfig() domain.InstallmentConfig {
	return domain.InstallmentConfig{
		MaxInstallments:        c.MaxInstallments,
		MinimumOfferValue:      c.MinimumValue,
		InstallmentsWithoutTax: c.InstallmentsWithoutTax,
		MinValueWithoutTax:     c.MinValueWithoutTax,
		TaxSchedule:            c.TaxSchedule,
	}
}

// SecretsConfig selects the secret backend for the API key
type SecretsConfig struct {
	Backend      string // "aws", "local" or "" (API key taken from env)
	AWSRegion    string
	LocalPath    string
	APIKeySecret string // secret path holding the Iugu API key
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	taxSchedule, err := ParseTaxSchedule(getEnv("IUGU_TAX_SCHEDULE", ""))
	if err != nil {
		return nil, fmt.Errorf("IUGU_TAX_SCHEDULE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "iugu_gateway"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		},
		Gateway: GatewayConfig{
			TestMode:               getEnvAsBool("IUGU_TEST_MODE", true),
			AccountID:              getEnv("IUGU_ACCOUNT_ID", ""),
			APIKey:                 getEnv("IUGU_API_KEY", ""),
			BaseURL:                getEnv("IUGU_BASE_URL", "https://api.iugu.com"),
			MaxInstallments:        getEnvAsInt("IUGU_MAX_INSTALLMENTS", 12),
			MinimumValue:           getEnvAsFloat("IUGU_MINIMUM_VALUE", 0),
			InstallmentsWithoutTax: getEnvAsInt("IUGU_INSTALLMENTS_WITHOUT_TAX", 1),
			MinValueWithoutTax:     getEnvAsFloat("IUGU_MIN_VALUE_WITHOUT_TAX", 0),
			TaxSchedule:            taxSchedule,
			WebhookURL:             getEnv("IUGU_WEBHOOK_URL", ""),
		},
		Secrets: SecretsConfig{
			Backend:      getEnv("SECRETS_BACKEND", ""),
			AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
			LocalPath:    getEnv("SECRETS_LOCAL_PATH", "./secrets"),
			APIKeySecret: getEnv("IUGU_API_KEY_SECRET", ""),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and preference bounds
func (c *Config) Validate() error {
	if c.Gateway.AccountID == "" {
		return fmt.Errorf("IUGU_ACCOUNT_ID is required")
	}
	if c.Gateway.APIKey == "" && c.Secrets.APIKeySecret == "" {
		return fmt.Errorf("one of IUGU_API_KEY or IUGU_API_KEY_SECRET is required")
	}
	if c.Gateway.MaxInstallments < 0 {
		return fmt.Errorf("IUGU_MAX_INSTALLMENTS must not be negative")
	}
	if c.Gateway.InstallmentsWithoutTax < 0 {
		return fmt.Errorf("IUGU_INSTALLMENTS_WITHOUT_TAX must not be negative")
	}
	for count, rate := range c.Gateway.TaxSchedule {
		if count < 1 || count > c.Gateway.MaxInstallments {
			return fmt.Errorf("tax schedule entry %d outside 1..%d", count, c.Gateway.MaxInstallments)
		}
		if rate < 0 {
			return fmt.Errorf("tax schedule entry %d has negative rate %v", count, rate)
		}
	}
	return nil
}

// ParseTaxSchedule parses a schedule of the form "1:0,2:1.5,3:2" into a
// typed mapping keyed by installment count
func ParseTaxSchedule(raw string) (domain.TaxSchedule, error) {
	schedule := domain.TaxSchedule{}
	if strings.TrimSpace(raw) == "" {
		return schedule, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed entry %q", pair)
		}
		count, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid installment count %q", parts[0])
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tax rate %q", parts[1])
		}
		schedule[count] = rate
	}
	return schedule, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
