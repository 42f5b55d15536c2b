package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agency-payments/internal/config"
	"agency-payments/internal/domain/ports/adapter"
	"agency-payments/internal/domain/ports/repository"
	pg "agency-payments/internal/infra/db/postgres"
	"agency-payments/internal/infra/logging"
	"agency-payments/internal/infra/metrics"
	pay "agency-payments/internal/infra/payment"
	red "agency-payments/internal/infra/redis"
	"agency-payments/internal/infra/web"
	"agency-payments/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Repositories ----
	txManager := pg.NewTxManager(pool)
	orderRepo := pg.NewOrderRepo(pool)
	activityRepo := pg.NewActivityLogRepo(pool)
	attemptRepo := pg.NewLoginAttemptRepo(pool)

	var packageRepo repository.PackageRepository = pg.NewPackageRepo(pool)

	// ---- Redis (optional catalog cache) ----
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		packageRepo = pg.NewPackageRepoCacheDecorator(packageRepo, redisClient, cfg.Redis.CacheTTL)
	}

	// ---- Payment gateways ----
	gateways := map[string]adapter.PaymentGateway{}
	if cfg.Payment.Midtrans.ServerKey != "" {
		gateways["midtrans"] = pay.NewMidtransGateway(cfg.Payment.Midtrans.ServerKey, cfg.Payment.Midtrans.Sandbox, cfg.Server.SiteURL, cfg.Payment.Midtrans.Timeout)
	}
	if cfg.Payment.Xendit.SecretKey != "" {
		gateways["xendit"] = pay.NewXenditGateway(cfg.Payment.Xendit.SecretKey, cfg.Server.SiteURL, cfg.Payment.Xendit.InvoiceDuration, cfg.Payment.Xendit.Timeout)
	}
	if _, ok := gateways[cfg.Checkout.DefaultProvider]; !ok {
		logger.Fatal().Str("provider", cfg.Checkout.DefaultProvider).Msg("default provider is not configured")
	}

	// ---- Use cases ----
	pricingUC := usecase.NewPricingUseCase(packageRepo, activityRepo, logger)
	checkoutUC := usecase.NewCheckoutUseCase(orderRepo, pricingUC, gateways, cfg.Checkout.DefaultProvider, cfg.Payment.Midtrans.Timeout, logger)
	reconcileUC := usecase.NewReconcileUseCase(orderRepo, activityRepo, txManager, logger)
	adminUC := usecase.NewAdminAuthUseCase(attemptRepo, activityRepo, cfg.Admin.PasswordBcrypt, cfg.Admin.Password, cfg.Admin.MaxAttempts, cfg.Admin.LockoutWindow, logger)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Admin.SessionSecret, !cfg.Runtime.Dev, cfg.Admin.SessionTTL)
	srv := web.NewServer(checkoutUC, reconcileUC, adminUC, auth, cfg.Payment.Midtrans.ServerKey, cfg.Payment.Xendit.CallbackToken, cfg.Checkout.RequireAuth, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(cfg.Server.RequestTimeout),
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	// ---- Graceful shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
