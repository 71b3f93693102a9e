package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"gridstock/frontend/login"
	"gridstock/frontend/reports"
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/cache"
	"gridstock/infrastructure/config"
	httpserver "gridstock/infrastructure/http"
	"gridstock/infrastructure/logging"
	"gridstock/infrastructure/rbac"
	"gridstock/infrastructure/sqlite"
	"gridstock/infrastructure/warehouse"
)

const sessionSweepInterval = 15 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Encoding:    cfg.Log.Encoding,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("gridstock stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run serves until ctx is cancelled. Every resource it opens is released
// before it returns, including on startup errors.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := sqlite.OpenDBWithOptions(cfg.Database.Path, sqlite.Options{
		BusyTimeout: cfg.Database.BusyTimeout,
		ReadConns:   cfg.Database.ReadConns,
	})
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := sqlite.ApplyMigrations(ctx, db, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	wh, created, err := warehouse.EnsureDefault(ctx, db, warehouse.Params{
		Name:    cfg.Warehouse.Name,
		Rows:    cfg.Warehouse.Rows,
		Columns: cfg.Warehouse.Columns,
	})
	if err != nil {
		return fmt.Errorf("ensure default warehouse: %w", err)
	}
	if created {
		logger.Info("created default warehouse",
			zap.Int64("warehouse_id", wh.ID),
			zap.Int("rows", wh.RowsCount),
			zap.Int("columns", wh.ColumnsCount))
	}

	jobsCtx, cancelJobs := context.WithCancel(ctx)
	var jobs sync.WaitGroup
	defer func() {
		cancelJobs()
		jobs.Wait()
	}()
	if cfg.Reports.AutoArchive {
		jobs.Add(1)
		go func() {
			defer jobs.Done()
			reports.RunAutoArchiver(jobsCtx, db, logger.Named("reports"), cfg.Reports.Interval)
		}()
	}
	jobs.Add(1)
	go func() {
		defer jobs.Done()
		sweepExpiredSessions(jobsCtx, db, logger)
	}()

	sessionCache := cache.NewUserSessionCache()
	userCache := cache.NewUserCache()
	rbacCache := cache.NewRbacRolesCache()
	rbacSvc := rbac.New(rbacCache)
	auditSvc := audit.NewService()

	server := httpserver.NewServer(httpserver.Options{
		Addr:               cfg.Server.Addr,
		ReadTimeout:        cfg.Server.ReadTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		ShutdownTimeout:    cfg.Server.ShutdownTimeout,
		SessionTTL:         cfg.Auth.SessionTTL,
		SecureCookies:      !cfg.IsDevelopment(),
		LoginRatePerMinute: cfg.Auth.LoginRatePerMinute,
		LoginBurst:         cfg.Auth.LoginBurst,
	}, db, sessionCache, userCache, rbacSvc, rbacCache, auditSvc, logger.Named("http"))
	if err := server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	logger.Info("gridstock listening", zap.String("addr", server.Addr), zap.String("env", cfg.Environment))

	<-ctx.Done()

	if err := server.Stop(); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func sweepExpiredSessions(ctx context.Context, db *sqlite.DB, logger *zap.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := login.DeleteExpiredSessions(ctx, db, now)
			if err != nil {
				logger.Warn("sweep expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("swept expired sessions", zap.Int64("count", n))
			}
		}
	}
}
