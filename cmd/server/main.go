package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/akilalakshman/esignet/internal/authenticator/handler"
	"github.com/akilalakshman/esignet/internal/authenticator/metrics"
	"github.com/akilalakshman/esignet/internal/authenticator/workers/cleanup"
	"github.com/akilalakshman/esignet/internal/platform/config"
	"github.com/akilalakshman/esignet/internal/platform/database"
	"github.com/akilalakshman/esignet/internal/platform/health"
	"github.com/akilalakshman/esignet/internal/platform/logger"
	"github.com/akilalakshman/esignet/internal/platform/redis"
	"github.com/akilalakshman/esignet/migrations"
	"github.com/akilalakshman/esignet/pkg/platform/middleware/request"
)

// main wires the KYC authenticator bridge and runs it until SIGINT or
// SIGTERM. Business logic lives in internal/authenticator.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("load configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	log.Info("initializing esignet authenticator",
		"env", cfg.Environment,
		"addr", cfg.Server.Addr,
		"impl", cfg.Authenticator.Impl,
		"audit_mode", cfg.Audit.Mode,
		"auth_only", cfg.Authenticator.AuthOnly,
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewWithRegisterer(reg)
	probes := health.New(cfg.Environment)

	rdb, err := redis.New(ctx, cfg.Redis, reg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close() //nolint:errcheck // process is exiting
		probes.RegisterCheck("redis", rdb.Health)
	}

	db, err := database.New(ctx, cfg.Database, reg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close() //nolint:errcheck // process is exiting
		if err := migrations.Up(ctx, db.DB()); err != nil {
			return err
		}
		probes.RegisterCheck("database", db.Health)
	}

	pipeline, err := buildAudit(ctx, cfg, log, reg, db)
	if err != nil {
		return err
	}
	if pipeline.admin != nil {
		var opts []health.CheckOption
		if cfg.Audit.Mode != config.AuditKafka {
			opts = append(opts, health.Optional())
		}
		probes.RegisterCheck("kafka", pipeline.admin.Check, opts...)
	}

	auth, err := buildAuthenticator(cfg, log, m, rdb, pipeline.publisher)
	if err != nil {
		pipeline.close(context.Background(), log)
		return err
	}

	limits, limitStore := buildRateLimit(cfg.RateLimit, log, reg, rdb)

	var sweepers []*cleanup.Service
	addSweeper := func(name string, store cleanup.ExpiringStore, interval time.Duration) error {
		sweeper, err := cleanup.New(store,
			cleanup.WithName(name),
			cleanup.WithInterval(interval),
			cleanup.WithLogger(log),
		)
		if err != nil {
			return err
		}
		sweepers = append(sweepers, sweeper)
		return nil
	}
	if auth.memoryStore != nil {
		err = addSweeper("kyc payloads", auth.memoryStore, sweepInterval(cfg.Token.PayloadTTL))
	}
	if err == nil && limitStore != nil {
		err = addSweeper("rate limit buckets", limitStore, sweepInterval(cfg.RateLimit.Window))
	}
	if err != nil {
		pipeline.close(context.Background(), log)
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(cfg, log, reg, probes, handler.New(auth.service, log), limits),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	pipeline.start(gctx)

	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		pipeline.close(shutdownCtx, log)
		return err
	})
	if rdb != nil {
		g.Go(func() error {
			return recordPoolStats(gctx, rdb, cfg.Server.MetricsInterval)
		})
	}
	for _, sweeper := range sweepers {
		g.Go(func() error {
			return ignoreCanceled(sweeper.Start(gctx))
		})
	}

	return g.Wait()
}

func newRouter(cfg config.Config, log *slog.Logger, reg *prometheus.Registry, probes *health.Handler, api *handler.Handler, limits handler.RouteMiddleware) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(request.Instrument(request.NewMetrics(reg)))

	probes.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(cfg.Server.RequestTimeout))
		r.Use(request.BodyLimit(cfg.Server.MaxBodyBytes))
		r.Use(request.ContentTypeJSON)
		api.RegisterWith(r, limits)
	})
	return r
}

func recordPoolStats(ctx context.Context, rdb *redis.Client, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rdb.RecordPoolStats()
		case <-ctx.Done():
			return nil
		}
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
