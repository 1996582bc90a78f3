package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"taskboard/internal/audit"
	boardhandler "taskboard/internal/board/handler"
	boardmetrics "taskboard/internal/board/metrics"
	boardservice "taskboard/internal/board/service"
	boardstore "taskboard/internal/board/store"
	"taskboard/internal/board/store/cache"
	"taskboard/internal/platform/config"
	"taskboard/internal/platform/httpserver"
	"taskboard/internal/platform/logger"
	platformmetrics "taskboard/internal/platform/metrics"
	platformredis "taskboard/internal/platform/redis"
	"taskboard/pkg/platform/circuit"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "taskboard: %v\n", err)
		os.Exit(1)
	}
}

// run wires the dependencies and blocks until a signal arrives or a
// component fails. Business logic lives in internal packages.
func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	boardMetrics := boardmetrics.New(reg)
	httpMetrics := platformmetrics.New(reg)

	var checks []healthCheck

	store, db, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	var auditStore audit.Store = audit.NewInMemoryStore()
	if db != nil {
		defer db.Close()
		checks = append(checks, healthCheck{name: "postgres", check: db.PingContext})
		pgAudit := audit.NewPostgresStore(db)
		if err := pgAudit.Migrate(ctx); err != nil {
			return err
		}
		auditStore = pgAudit
	}

	redisClient, err := platformredis.Open(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		store = cache.NewCachedStore(store, cache.NewRedisCache(redisClient, cfg.Board.CacheTTL),
			cache.WithMetrics(boardMetrics),
			cache.WithLogger(log),
		)
		checks = append(checks, healthCheck{name: "redis", check: platformredis.HealthCheck(redisClient)})
		log.Info("board cache enabled", "ttl", cfg.Board.CacheTTL.String())
	}

	g, gctx := errgroup.WithContext(ctx)

	publisherOpts := []audit.PublisherOption{audit.WithPublisherLogger(log)}
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			return err
		}
		outbox := make(chan audit.Event, cfg.Kafka.OutboxSize)
		publisherOpts = append(publisherOpts, audit.WithOutbox(outbox))
		guarded := audit.NewGuardedSink(sink, circuit.New("audit-kafka"), log)
		worker := audit.NewWorker(guarded, outbox, log)
		g.Go(func() error {
			if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("audit worker: %w", err)
			}
			return nil
		})
		log.Info("audit kafka sink enabled", "topic", cfg.Kafka.Topic)
	}
	publisher := audit.NewPublisher(auditStore, publisherOpts...)

	service, err := boardservice.New(store,
		boardservice.WithLogger(log),
		boardservice.WithAuditPublisher(publisher),
		boardservice.WithMetrics(boardMetrics),
		boardservice.WithMaxConflictRetries(cfg.Board.MaxConflictRetries),
	)
	if err != nil {
		return err
	}

	router := newRouter(routerDeps{
		logger:         log,
		registry:       reg,
		httpMetrics:    httpMetrics,
		boards:         boardhandler.New(service, log),
		checks:         checks,
		requestTimeout: cfg.RequestTimeout,
	})
	srv := httpserver.New(cfg, router)

	g.Go(func() error {
		log.Info("starting taskboard", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down taskboard")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// openStore returns the Postgres store when DATABASE_URL is set and the
// in-memory store otherwise.
func openStore(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (cache.Store, *sql.DB, error) {
	if cfg.URL == "" {
		log.Warn("DATABASE_URL not set, boards are kept in memory")
		return boardstore.NewInMemory(), nil, nil
	}
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLife)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	store := boardstore.NewPostgres(db)
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, db, nil
}
