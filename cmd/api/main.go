package main

import (
	"context"
	"log"

	"ecu-stand/internal/core/cache"
	"ecu-stand/internal/core/config"
	"ecu-stand/internal/core/logger"
	"ecu-stand/internal/core/server"
	adminhandler "ecu-stand/internal/features/admin/handler"
	adminservice "ecu-stand/internal/features/admin/service"
	orderadapter "ecu-stand/internal/features/orders/adapters"
	orderhandler "ecu-stand/internal/features/orders/handler"
	orderservice "ecu-stand/internal/features/orders/service"

	"go.uber.org/zap"
)

// @title ECU Stand API
// @version 1.0
// @description Order intake, email notification and the passphrase-gated admin dashboard for the ECU Stand landing page.
// @contact.name API Support
// @license.name MIT
// @host localhost:8787
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	if missing := cfg.Mail.Missing(); len(missing) > 0 {
		l.Warn("Mail is not configured, orders will be refused", zap.Strings("missing", missing))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis and the order record store
	redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
	if err != nil {
		l.Fatal("Failed to parse Redis URL", zap.Error(err))
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		l.Fatal("Redis Health Check Failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	orderStore := orderadapter.NewRedisOrderStore(redisCache)

	// Initialize Order Intake Service & Handler
	notifier := orderadapter.NewResendNotifier(cfg.Mail)
	intakeService := orderservice.NewIntakeService(notifier, orderStore, cfg.Mail)
	orderHandler := orderhandler.NewOrderHandler(intakeService)

	// Initialize Admin Service & Handler
	adminService := adminservice.NewAdminService(orderStore, cfg.Admin.Passphrase)
	adminHandler := adminhandler.NewAdminHandler(adminService)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Post("/api/order", orderHandler.SubmitOrder)
	adminHandler.Register(srv.App)
	srv.ServeSPA()

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
