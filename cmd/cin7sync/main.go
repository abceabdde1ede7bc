// Command cin7sync runs one synchronization cycle against the Cin7 platform:
// it loads configuration, fetches the sales orders modified within the
// lookback window and logs a run summary. Failures are pushed to the
// configured chat webhook.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/connectors/internal/domain/integration"
	"github.com/erp/connectors/internal/infrastructure/alerting"
	"github.com/erp/connectors/internal/infrastructure/cin7"
	"github.com/erp/connectors/internal/infrastructure/config"
	"github.com/erp/connectors/internal/infrastructure/logger"
	"github.com/erp/connectors/internal/infrastructure/rotation"
)

func main() {
	configPath := flag.String("config", ".", "directory containing config.toml")
	window := flag.Duration("window", time.Hour, "lookback window for modified sales orders")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, log = logger.WithRunID(logger.WithContext(ctx, log), log, uuid.NewString())

	alerter := alerting.NewWebhookAlerter(cfg.Webhook.URL, cfg.Webhook.MentionID, log.Named("alerting"))

	if err := run(ctx, cfg, log, *window); err != nil {
		log.Error("sync run failed", zap.Error(err))
		alerter.Alert(ctx, "cin7sync: "+err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, window time.Duration) error {
	var counter integration.KeyRotationCounter
	if cfg.Cin7.RotationEnabled {
		redisCounter, err := rotation.NewRedisCounter(cfg.RotationRedisConfig())
		if err != nil {
			return fmt.Errorf("rotation counter: %w", err)
		}
		defer func() { _ = redisCounter.Close() }()
		counter = redisCounter
	}

	client, err := cin7.New(cfg.Cin7ClientConfig(), counter, log.Named("cin7"))
	if err != nil {
		return fmt.Errorf("cin7 client: %w", err)
	}
	defer client.Close()

	log.Info("fetching recent sales orders", zap.Duration("window", window))
	started := time.Now()

	orders, err := client.SalesOrders.GetRecent(ctx, window)
	if err != nil {
		return fmt.Errorf("fetch recent sales orders: %w", err)
	}

	log.Info("sync run finished",
		zap.Int("orders", len(orders)),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}
