package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"meridian/internal/access"
	accessMetrics "meridian/internal/access/metrics"
	"meridian/internal/audit"
	auditMetrics "meridian/internal/audit/metrics"
	"meridian/internal/jwtauth"
	"meridian/internal/notify"
	"meridian/internal/platform/config"
	"meridian/internal/platform/database"
	"meridian/internal/platform/httpserver"
	"meridian/internal/platform/logger"
	"meridian/internal/platform/tracing"
	"meridian/internal/profile"
	"meridian/internal/security"
	httptransport "meridian/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing meridian",
		"addr", cfg.Addr,
		"audit_buffer_size", cfg.AuditBufferSize,
	)

	// Postgres when DATABASE_URL is set, in-memory stores otherwise so the
	// service runs locally with zero setup.
	var (
		profiles   access.ProfileStore
		auditStore audit.Store
		health     httptransport.HealthChecker
	)
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := pool.Migrate(migrateCtx); err != nil {
			cancel()
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		cancel()
		profiles = profile.NewPostgres(pool.DB())
		auditStore = audit.NewPostgres(pool.DB())
		health = pool
		defer pool.Close()
		log.Info("using postgres stores")
	} else {
		profiles = profile.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	aMetrics := auditMetrics.New()
	recorder := audit.NewRecorder(auditStore,
		audit.WithBuffer(cfg.AuditBufferSize),
		audit.WithRecorderLogger(log),
		audit.WithRecorderMetrics(aMetrics),
	)
	defer recorder.Close()

	notifier := notify.NewSlog(log)
	tracer := tracing.NewOTel()

	reader := audit.NewReader(auditStore, notifier,
		audit.WithReaderLogger(log),
		audit.WithReaderMetrics(aMetrics),
		audit.WithReaderTracer(tracer),
	)

	accessSvc := access.New(profiles, recorder,
		access.WithLogger(log),
		access.WithMetrics(accessMetrics.New()),
		access.WithTracer(tracer),
	)

	securitySvc := security.New(auditStore,
		security.WithLogger(log),
		security.WithTracer(tracer),
	)

	tokens := jwtauth.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)

	handler := httptransport.NewHandler(accessSvc, recorder, reader, securitySvc, health, log)
	router := httptransport.NewRouter(handler, tokens, accessSvc, log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
