// Copyright 2026 The Ofisi Authors
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
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ofisihq/ofisi/internal/audit"
	"github.com/ofisihq/ofisi/internal/auth"
	"github.com/ofisihq/ofisi/internal/config"
	"github.com/ofisihq/ofisi/internal/dashboard"
	"github.com/ofisihq/ofisi/internal/identity"
	"github.com/ofisihq/ofisi/internal/observability/logger"
	"github.com/ofisihq/ofisi/internal/observability/metrics"
	"github.com/ofisihq/ofisi/internal/observability/tracing"
	"github.com/ofisihq/ofisi/internal/registry"
	"github.com/ofisihq/ofisi/internal/school"
	"github.com/ofisihq/ofisi/internal/sme"
	"github.com/ofisihq/ofisi/internal/store/postgres"
	transportHTTP "github.com/ofisihq/ofisi/internal/transport/http"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting ofisi workspace backend")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   cfg.Observability.SamplingRate,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	_, err = metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	// Initialize database
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	registryRepo := postgres.NewRegistryRepository(db)
	studentRepo := postgres.NewStudentRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	classRepo := postgres.NewClassRepository(db)
	subjectRepo := postgres.NewSubjectRepository(db)
	feeRepo := postgres.NewFeeRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	dashboardRepo := postgres.NewDashboardRepository(db)
	provisioner := postgres.NewProvisioner(db)

	// Initialize helpers
	auditLogger := audit.NewSlogLogger()
	passwordHasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)
	tokenIssuer := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Observability.ServiceName, cfg.Auth.TokenTTL)

	// Initialize services
	identityService := identity.NewService(userRepo, passwordHasher, auditLogger)
	registryService := registry.NewService(registryRepo, auditLogger)
	authService := auth.NewService(
		identityService,
		registryService,
		provisioner,
		tokenIssuer,
		cfg.Auth.BaseDomain,
		auditLogger,
	)
	schoolService := school.NewService(studentRepo, staffRepo, classRepo, subjectRepo, feeRepo, auditLogger)
	smeService := sme.NewService(transactionRepo, auditLogger)
	dashboardService := dashboard.NewService(dashboardRepo)

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		authService,
		registryService,
		schoolService,
		smeService,
		dashboardService,
	)

	routerCfg := transportHTTP.RouterConfig{
		RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst: cfg.RateLimit.Burst,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	if cfg.FrontendDir != "" {
		routerCfg.StaticFS = os.DirFS(cfg.FrontendDir)
	}
	router := handler.NewRouter(routerCfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying shared schema...")
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}
