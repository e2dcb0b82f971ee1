// Package main is the entry point for the Seedling mission worker.
//
// The worker owns the mission lifecycle outside of user requests: it runs
// the nightly expiry sweep that fails missions whose period ended, and it
// processes the lifecycle events those transitions emit.
//
// The architecture follows Clean Architecture and DDD:
//   - Domain: pure business logic without external dependencies
//   - Application: use case orchestration (Commands/Queries/Event handlers)
//   - Infrastructure: repositories, cache, event bus, scheduler
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/seedling-app/seedling-backend/config"

	"github.com/seedling-app/seedling-backend/internal/application/command"
	"github.com/seedling-app/seedling-backend/internal/application/eventhandler"

	"github.com/seedling-app/seedling-backend/internal/domain/judgement"
	"github.com/seedling-app/seedling-backend/internal/domain/mission"

	"github.com/seedling-app/seedling-backend/internal/infrastructure/messaging"
	"github.com/seedling-app/seedling-backend/internal/infrastructure/persistence/postgres"
	"github.com/seedling-app/seedling-backend/internal/infrastructure/persistence/redis"
	"github.com/seedling-app/seedling-backend/internal/infrastructure/scheduler"
	"github.com/seedling-app/seedling-backend/internal/infrastructure/scheduler/jobs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "worker failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.Observability)
	slog.SetDefault(logger)

	logger.Info("starting seedling worker",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── PostgreSQL ────────────────────────────────────────────────────────────

	conn, err := postgres.NewConnection(ctx, postgresConfig(cfg.Database))
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations applied")
	}

	repo := postgres.NewMissionRepository(conn)

	// ── Redis (optional) ──────────────────────────────────────────────────────

	var (
		missionCache mission.Cache
		relCache     eventhandler.RelationCacheInvalidator
		sweepMarker  jobs.SweepMarker
	)

	if !cfg.Redis.Disabled {
		cache, err := redis.NewCache(redisConfig(cfg.Redis))
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer cache.Close()

		mc := redis.NewMissionCache(cache)
		missionCache = mc
		relCache = mc
		sweepMarker = redis.NewSweepMarker(cache)
		logger.Info("redis cache enabled", "addr", cfg.Redis.Host)
	} else {
		logger.Warn("redis disabled, running without cache")
	}

	// ── Event bus and handlers ────────────────────────────────────────────────

	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = logger
	bus := messaging.NewInMemoryEventBus(busConfig)
	defer bus.Close()

	closedHandler := eventhandler.NewOnMissionClosedHandler(
		relCache,
		logger,
		eventhandler.DefaultMissionClosedConfig(),
	)
	if err := closedHandler.Register(bus); err != nil {
		return fmt.Errorf("register event handlers: %w", err)
	}

	// ── Application services ──────────────────────────────────────────────────

	judge := judgement.NewService()
	changer := command.NewMissionStatusChanger(repo, missionCache, judge, bus, logger)

	// ── Scheduler and jobs ────────────────────────────────────────────────────

	jobConfig := jobs.DefaultExpireMissionsConfig()
	if cfg.Scheduler.JobTimeout > 0 {
		jobConfig.Timeout = cfg.Scheduler.JobTimeout
	}

	expireJob := jobs.NewExpireMissionsJob(repo, changer, sweepMarker, logger, jobConfig)

	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:         logger,
		MaxHistorySize: 100,
		EnableMetrics:  true,
	})

	schedule, err := sweepSchedule(cfg.Scheduler)
	if err != nil {
		return fmt.Errorf("build sweep schedule: %w", err)
	}

	if err := sched.Register(expireJob, schedule); err != nil {
		return fmt.Errorf("register expiry job: %w", err)
	}

	// Run-once mode: sweep immediately, report, exit.
	if cfg.Scheduler.RunOnce {
		logger.Info("run-once mode, sweeping now")
		result, err := sched.RunNow(ctx, expireJob.Name())
		if err != nil {
			return fmt.Errorf("run sweep: %w", err)
		}
		logStats(logger, expireJob, result.Duration)
		return nil
	}

	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler disabled and run-once not set, nothing to do")
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	logger.Info("scheduler started", "sweep_schedule", schedule.String())

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := sched.Stop(); err != nil {
			logger.Error("scheduler stop failed", "error", err)
		}
	}()

	select {
	case <-done:
		logger.Info("worker stopped cleanly")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timed out, exiting anyway")
	}

	return nil
}

// sweepSchedule builds the expiry sweep schedule: an explicit cron wins,
// otherwise the configured daily wall-clock time.
func sweepSchedule(cfg config.SchedulerConfig) (scheduler.Schedule, error) {
	if cfg.SweepCron != "" {
		return scheduler.ParseCronExpression(cfg.SweepCron)
	}
	return scheduler.NewDailyAtSchedule(cfg.SweepHour, cfg.SweepMinute)
}

func logStats(logger *slog.Logger, job *jobs.ExpireMissionsJob, duration time.Duration) {
	stats := job.LastRunStats()
	if stats == nil {
		logger.Warn("sweep finished without stats")
		return
	}
	logger.Info("sweep finished",
		"sweep_date", stats.SweepDate,
		"checked", stats.Checked,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
		"errors", len(stats.Errors),
		"duration", duration.String(),
	)
}

func newLogger(cfg config.ObservabilityConfig) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func postgresConfig(cfg config.DatabaseConfig) postgres.Config {
	pc := postgres.DefaultConfig()
	pc.Host = cfg.Host
	pc.Port = cfg.Port
	pc.Database = cfg.Database
	pc.User = cfg.User
	pc.Password = cfg.Password
	pc.SSLMode = cfg.SSLMode
	pc.MaxConns = int32(cfg.MaxConns)
	pc.MinConns = int32(cfg.MinConns)
	pc.MaxConnLifetime = cfg.ConnMaxLifetime
	pc.MaxConnIdleTime = cfg.ConnMaxIdleTime
	return pc
}

func redisConfig(cfg config.RedisConfig) redis.Config {
	rc := redis.DefaultConfig()
	rc.Host = cfg.Host
	rc.Port = cfg.Port
	rc.Password = cfg.Password
	rc.DB = cfg.DB
	rc.PoolSize = cfg.PoolSize
	rc.MinIdleConns = cfg.MinIdleConns
	rc.DialTimeout = cfg.DialTimeout
	rc.ReadTimeout = cfg.ReadTimeout
	rc.WriteTimeout = cfg.WriteTimeout
	return rc
}
