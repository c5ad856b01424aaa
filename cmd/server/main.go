// Copyright 2026 The TenantForms Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/tenantforms/tenantforms/internal/audit"
	"github.com/tenantforms/tenantforms/internal/auth"
	"github.com/tenantforms/tenantforms/internal/cache"
	"github.com/tenantforms/tenantforms/internal/config"
	"github.com/tenantforms/tenantforms/internal/form"
	"github.com/tenantforms/tenantforms/internal/observability/logger"
	"github.com/tenantforms/tenantforms/internal/observability/metrics"
	"github.com/tenantforms/tenantforms/internal/observability/tracing"
	"github.com/tenantforms/tenantforms/internal/seed"
	"github.com/tenantforms/tenantforms/internal/store/memory"
	"github.com/tenantforms/tenantforms/internal/store/postgres"
	"github.com/tenantforms/tenantforms/internal/submission"
	"github.com/tenantforms/tenantforms/internal/tenant"
	transportHTTP "github.com/tenantforms/tenantforms/internal/transport/http"
	"github.com/tenantforms/tenantforms/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
		OTel:        cfg.Observability.OTELEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		err = runServer(ctx, cfg)
	case "migrate":
		err = runMigrate(ctx, cfg)
	case "seed":
		err = runSeed(ctx, cfg)
	default:
		err = fmt.Errorf("unknown command %q (want serve, migrate or seed)", cmd)
	}
	if err != nil {
		slog.Error("command failed", logger.Operation(cmd), logger.Error(err))
		os.Exit(1)
	}
}

// repositories is the persistence backend selected by STORE_DRIVER.
type repositories struct {
	tenants     tenant.Repository
	users       user.Repository
	forms       form.Repository
	submissions submission.Repository
	pinger      transportHTTP.Pinger
	close       func()
}

func openPostgres(ctx context.Context, cfg *config.Config) (*postgres.DB, error) {
	return postgres.New(ctx, postgres.Config{
		URL:          cfg.Database.URL,
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		QueryTimeout: cfg.Database.QueryTimeout,
	})
}

func openStore(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Store.Driver == config.DriverMemory {
		st := memory.New()
		slog.Warn("using in-memory store; data is lost on restart")
		return &repositories{
			tenants:     st.Tenants(),
			users:       st.Users(),
			forms:       st.Forms(),
			submissions: st.Submissions(),
			pinger:      st,
			close:       func() {},
		}, nil
	}

	db, err := openPostgres(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("connected to database")

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return &repositories{
		tenants:     postgres.NewTenantRepository(db),
		users:       postgres.NewUserRepository(db),
		forms:       postgres.NewFormRepository(db),
		submissions: postgres.NewSubmissionRepository(db),
		pinger:      db,
		close:       db.Close,
	}, nil
}

// services wires the domain layer on top of a store.
type services struct {
	tenants     *tenant.Service
	users       *user.Service
	forms       *form.Service
	submissions *submission.Service
	auth        *auth.Service
}

func newServices(ctx context.Context, cfg *config.Config, repos *repositories, auditLogger audit.Logger) (*services, func(), error) {
	var client *redis.Client
	if cfg.Redis.Addr != "" {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	closeCache := func() {
		if client != nil {
			_ = client.Close()
		}
	}
	tenantRepo := cache.NewTenantRepository(repos.tenants, cache.New(ctx, client), cfg.Redis.TenantTTL)

	authService, err := auth.NewService(cfg.Auth.Issuer, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		closeCache()
		return nil, nil, err
	}

	hasher := user.NewPasswordHasher(
		cfg.Auth.Argon2Memory,
		cfg.Auth.Argon2Iterations,
		cfg.Auth.Argon2Parallelism,
		cfg.Auth.Argon2SaltLength,
		cfg.Auth.Argon2KeyLength,
	)

	return &services{
		tenants:     tenant.NewService(tenantRepo, auditLogger),
		users:       user.NewService(repos.users, hasher, auditLogger),
		forms:       form.NewService(repos.forms, tenantRepo, auditLogger),
		submissions: submission.NewService(repos.submissions, repos.forms, auditLogger, cfg.Store.FormLookupTimeout),
		auth:        authService,
	}, closeCache, nil
}

func runServer(ctx context.Context, cfg *config.Config) error {
	slog.Info("starting tenantforms")

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   cfg.Observability.SamplingRate,
		Endpoint:       cfg.Observability.OTELEndpoint,
		Insecure:       cfg.Observability.OTELInsecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", logger.Error(err))
		}
	}()

	meter, err := metrics.New(ctx, metrics.Config{Enabled: cfg.Observability.OTELEnabled}, cfg.Observability.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize meter: %w", err)
	}
	domainMetrics, err := metrics.NewDomain(meter)
	if err != nil {
		return err
	}
	auditLogger := metrics.NewAuditRecorder(audit.NewSlogLogger(), domainMetrics)

	repos, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	svc, closeCache, err := newServices(ctx, cfg, repos, auditLogger)
	if err != nil {
		return err
	}
	defer closeCache()

	if cfg.Store.Seed || cfg.Store.Driver == config.DriverMemory {
		if _, err := seed.New(svc.tenants, svc.users, svc.forms, slog.Default()).Run(ctx); err != nil {
			return err
		}
	}

	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go rateLimiter.Run(ctx)

	handler := transportHTTP.NewHandler(svc.tenants, svc.users, svc.forms, svc.submissions, svc.auth, repos.pinger)
	router := transportHTTP.NewRouter(handler, transportHTTP.RouterConfig{
		RateLimiter:    rateLimiter,
		Metrics:        metrics.NewHTTPMetrics("tenantforms"),
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"), logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func runMigrate(ctx context.Context, cfg *config.Config) error {
	if cfg.Store.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requires STORE_DRIVER=postgres")
	}
	db, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	slog.Info("migration successful")
	return nil
}

func runSeed(ctx context.Context, cfg *config.Config) error {
	repos, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	svc, closeCache, err := newServices(ctx, cfg, repos, audit.NewSlogLogger())
	if err != nil {
		return err
	}
	defer closeCache()

	res, err := seed.New(svc.tenants, svc.users, svc.forms, slog.Default()).Run(ctx)
	if err != nil {
		return err
	}
	slog.Info("seed finished",
		logger.TenantID(res.TenantID),
		logger.FormID(res.ContactFormID),
		slog.Int("created", res.Created),
	)
	return nil
}
