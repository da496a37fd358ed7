// server runs the compliance platform API.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cosmetic-compliance-platform/backend/internal/audit"
	audithandler "cosmetic-compliance-platform/backend/internal/audit/handler"
	auditrepo "cosmetic-compliance-platform/backend/internal/audit/repository"
	"cosmetic-compliance-platform/backend/internal/blacklist"
	companyrepo "cosmetic-compliance-platform/backend/internal/company/repository"
	compliancehandler "cosmetic-compliance-platform/backend/internal/compliance/handler"
	compliancerepo "cosmetic-compliance-platform/backend/internal/compliance/repository"
	complianceservice "cosmetic-compliance-platform/backend/internal/compliance/service"
	"cosmetic-compliance-platform/backend/internal/config"
	"cosmetic-compliance-platform/backend/internal/db"
	healthhandler "cosmetic-compliance-platform/backend/internal/health/handler"
	identityhandler "cosmetic-compliance-platform/backend/internal/identity/handler"
	identityservice "cosmetic-compliance-platform/backend/internal/identity/service"
	"cosmetic-compliance-platform/backend/internal/logging"
	producthandler "cosmetic-compliance-platform/backend/internal/product/handler"
	productrepo "cosmetic-compliance-platform/backend/internal/product/repository"
	productservice "cosmetic-compliance-platform/backend/internal/product/service"
	"cosmetic-compliance-platform/backend/internal/security"
	"cosmetic-compliance-platform/backend/internal/server"
	"cosmetic-compliance-platform/backend/internal/storage"
	"cosmetic-compliance-platform/backend/internal/telemetry/otel"
	userrepo "cosmetic-compliance-platform/backend/internal/user/repository"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, "cosy-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otel.Init(ctx, otel.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: "cosy-api",
	})
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	dbConn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer dbConn.Close()

	uploads, err := storage.New(ctx, storage.Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	tokens := security.NewTokenProvider(
		[]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)
	revoked := blacklist.NewPostgresStore(dbConn)

	auditRepo := auditrepo.NewPostgresRepository(dbConn)
	auditLog := audit.NewLogger(auditRepo, server.ContextClientIP, logger).
		WithEmitter(audit.NewOTelEmitter(providers.Logs))

	authSvc := identityservice.NewAuthService(
		userrepo.NewPostgresRepository(dbConn),
		companyrepo.NewPostgresRepository(dbConn),
		hasher, tokens, revoked, auditLog)

	products := productrepo.NewPostgresRepository(dbConn)
	var uploader productservice.Uploader
	if uploads != nil {
		uploader = uploads
	} else {
		logger.Info("object storage not configured; image uploads disabled")
	}
	productSvc := productservice.New(products, uploader)
	complianceSvc := complianceservice.New(compliancerepo.NewPostgresRepository(dbConn), products)

	srv := server.New(cfg.HTTPAddr, logger, authSvc,
		identityhandler.New(authSvc),
		producthandler.New(productSvc),
		compliancehandler.New(complianceSvc),
		audithandler.New(auditRepo),
		healthhandler.New(dbConn),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Fatalf("serve: %v", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("server stopped")
}
