// cmd/tripos-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"trip-os/internal/assistant"
	"trip-os/internal/common/config"
	"trip-os/internal/common/database"
	"trip-os/internal/common/logger"
	"trip-os/internal/common/observability"
	"trip-os/internal/search"
	"trip-os/internal/server"
	"trip-os/internal/session"
	"trip-os/internal/store"
	"trip-os/internal/tripdata"
	"trip-os/internal/tts"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting trip-os server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New("tripos-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Wire application components ---
	assistantClient := assistant.NewClient(cfg.APIs.Assistant, log)
	poller := assistant.NewPoller(assistantClient, cfg.Pipeline, log)
	sessions := session.NewStore(redis, cfg.Database.Redis, log)
	trips := store.NewTripStore(pg.DB, log)
	index := search.NewTripIndex(esClient.Client, cfg.Database.Elasticsearch.TripIndex, log)
	synthesizer := tts.NewClient(cfg.APIs.TTS, log)

	pipeline := tripdata.NewPipeline(
		tripdata.NewMapper(&tripdata.MapperConfig{BudgetTolerance: cfg.Pipeline.BudgetTolerance}, log),
		tripdata.NewValidator(log),
	)

	chat := server.NewChatService(assistantClient, poller, sessions, pipeline, trips, index, obs, log)

	srv := server.New(
		cfg.Server,
		chat,
		trips,
		index,
		synthesizer,
		map[string]server.HealthChecker{
			"postgres":      pg,
			"elasticsearch": esClient,
			"redis":         redis,
		},
		log,
	)

	// --- Run until interrupted ---
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(runCtx); err != nil {
		zapLog.Fatal("http server failed", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}
