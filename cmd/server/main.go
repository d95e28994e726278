package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Reacta/iugu-gateway/internal/adapters/iugu"
	"github.com/Reacta/iugu-gateway/internal/adapters/postgres"
	"github.com/Reacta/iugu-gateway/internal/adapters/secrets"
	"github.com/Reacta/iugu-gateway/internal/config"
	"github.com/Reacta/iugu-gateway/internal/domain/ports"
	webhookHandler "github.com/Reacta/iugu-gateway/internal/handlers/webhook"
	paymentService "github.com/Reacta/iugu-gateway/internal/services/payment"
	"github.com/Reacta/iugu-gateway/pkg/logging"
	"github.com/Reacta/iugu-gateway/pkg/observability"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	zapLogger := initLogger(cfg.Logger)
	defer zapLogger.Sync()
	logger := logging.NewZapLogger(zapLogger)

	zapLogger.Info("Starting iugu gateway service",
		zap.String("version", "0.1.0"),
		zap.Bool("test_mode", cfg.Gateway.TestMode),
	)

	ctx := context.Background()

	// Resolve the Iugu API key from the configured secret backend when it
	// is not supplied directly through the environment.
	if cfg.Gateway.APIKey == "" {
		apiKey, err := resolveAPIKey(ctx, cfg, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to resolve API key", zap.Error(err))
		}
		cfg.Gateway.APIKey = apiKey
	}

	dbPool, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbPool.Close()

	zapLogger.Info("Database connection established",
		zap.String("database", cfg.Database.Database),
	)

	executor := postgres.NewDBExecutor(dbPool)
	paymentRepo := postgres.NewPaymentRepository(executor)
	orderRepo := postgres.NewOrderRepository(executor)

	gateway := iugu.NewClientWithDefaults(iugu.Config{
		BaseURL:   cfg.Gateway.BaseURL,
		APIKey:    cfg.Gateway.APIKey,
		AccountID: cfg.Gateway.AccountID,
		TestMode:  cfg.Gateway.TestMode,
	}, logger)

	service := paymentService.NewService(cfg.Gateway, executor, paymentRepo, orderRepo, gateway, logger)
	webhooks := webhookHandler.NewHandler(paymentRepo, service, logger)

	httpMux := http.NewServeMux()
	httpMux.HandleFunc("/webhooks/iugu", webhooks.HandleNotification)
	httpMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: httpMux,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", observability.MetricsHandler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	go func() {
		zapLogger.Info("Metrics server listening", zap.Int("port", cfg.Server.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to serve metrics", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Metrics server shutdown error", zap.Error(err))
	}

	zapLogger.Info("Servers stopped")
}

func initLogger(cfg config.LoggerConfig) *zap.Logger {
	level := zapcore.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func resolveAPIKey(ctx context.Context, cfg *config.Config, logger *zap.Logger) (string, error) {
	var (
		manager ports.SecretManager
		err     error
	)
	switch cfg.Secrets.Backend {
	case "aws":
		manager, err = secrets.NewAWSSecretsManagerAdapter(ctx,
			secrets.DefaultAWSSecretsManagerConfig(cfg.Secrets.AWSRegion), logger)
		if err != nil {
			return "", err
		}
	case "local":
		manager = secrets.NewLocalSecretManager(cfg.Secrets.LocalPath, logger)
	default:
		return "", fmt.Errorf("unknown secrets backend %q", cfg.Secrets.Backend)
	}

	secret, err := manager.GetSecret(ctx, cfg.Secrets.APIKeySecret)
	if err != nil {
		return "", fmt.Errorf("fetch API key secret: %w", err)
	}
	return secret.Value, nil
}
