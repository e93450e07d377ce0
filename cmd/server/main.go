package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civicpulse/request-notifier/internal/api"
	"github.com/civicpulse/request-notifier/internal/config"
	"github.com/civicpulse/request-notifier/internal/db"
	"github.com/civicpulse/request-notifier/internal/domain"
	"github.com/civicpulse/request-notifier/internal/gateway"
	"github.com/civicpulse/request-notifier/internal/metrics"
	"github.com/civicpulse/request-notifier/internal/queue"
	"github.com/civicpulse/request-notifier/internal/ratelimiter"
	"github.com/civicpulse/request-notifier/internal/repository"
	"github.com/civicpulse/request-notifier/internal/service"
	"github.com/civicpulse/request-notifier/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	messages, err := config.LoadMessages(cfg.MessagesFile)
	if err != nil {
		logger.Fatal("failed to load status messages", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.MigrationsURL, cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	q := queue.New(cfg.QueueCapacity)
	metrics.RegisterQueueDepth(reg, q.Depth)

	users := repository.NewPgUserRepository(pool)
	events := repository.NewPgEventRepository(pool)
	errorLog := repository.NewPgErrorLogRepository(pool)

	ledger, closeLedger, err := newDeliveryLedger(cfg, pool)
	if err != nil {
		logger.Fatal("failed to set up delivery ledger", zap.Error(err))
	}
	defer closeLedger()

	gw, err := newGateway(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to set up push gateway", zap.Error(err))
	}

	notifier := service.NewStatusChangeNotifier(
		users, errorLog, ledger, gw,
		ratelimiter.New(cfg.GatewayRateLimit),
		service.NotifierConfig{
			Messages: messages,
			Hint: domain.DeliveryHint{
				Sound:     cfg.PushSound,
				Priority:  cfg.PushPriority,
				ChannelID: cfg.PushChannelID,
			},
		},
		m.NotifierHooks(),
		logger,
	)
	logger.Info("status notifier ready",
		zap.String("gateway", cfg.GatewayKind),
		zap.String("dedup_backend", cfg.DedupBackend),
	)

	// ---- background intake ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	workers := worker.NewPool(cfg.Workers, q, events, notifier, logger)
	workers.Start(workerCtx)

	onDropped := m.EventsDropped.Inc
	if cfg.ListenerEnabled {
		listener := worker.NewChangeListener(pool, cfg.ListenChannel, q, worker.ListenerHooks{
			OnConnected: func(up bool) {
				if up {
					m.ListenerUp.Set(1)
				} else {
					m.ListenerUp.Set(0)
				}
			},
			OnDropped: onDropped,
		}, logger)
		go listener.Run(workerCtx)
	}

	sweeper := worker.NewOutboxSweeper(events, q, cfg.SweepInterval, cfg.SweepGrace, cfg.SweepBatch, onDropped, logger)
	go sweeper.Run(workerCtx)

	// ---- HTTP server ----
	router := api.NewRouter(notifier, q, pool, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop the listener, the sweeper and the workers' queue reads.
	cancelWorkers()

	// 3. Wait for in-flight events to finish.
	workers.Wait()

	logger.Info("server stopped cleanly")
}

func newGateway(ctx context.Context, cfg *config.Config) (gateway.Gateway, error) {
	switch cfg.GatewayKind {
	case config.GatewayFCM:
		fcm, err := gateway.NewFCMGateway(ctx, cfg.FCMCredentialsFile)
		if err != nil {
			return nil, err
		}
		return fcm, nil
	default:
		return gateway.NewExpoGateway(cfg.GatewayURL, cfg.GatewayAccessToken, cfg.GatewayTimeout), nil
	}
}

func newDeliveryLedger(cfg *config.Config, pool *pgxpool.Pool) (repository.DeliveryLedger, func(), error) {
	switch cfg.DedupBackend {
	case config.DedupRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		return repository.NewRedisDeliveryLedger(rdb, cfg.DedupTTL, cfg.DedupClaimTimeout), func() { _ = rdb.Close() }, nil
	case config.DedupNone:
		return repository.NewNoopDeliveryLedger(), func() {}, nil
	default:
		return repository.NewPgDeliveryLedger(pool, cfg.DedupClaimTimeout), func() {}, nil
	}
}
