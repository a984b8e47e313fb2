package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"afrigo/internal/app"
	"afrigo/internal/config"
	"afrigo/internal/handler"
	internalRedis "afrigo/internal/redis"
	"afrigo/internal/repository/postgres"
	"afrigo/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	configCache := internalRedis.NewConfigCache(redisClient)

	// Initialize repositories.
	uow := postgres.NewUnitOfWork(db)
	rideRepo := postgres.NewRideRepository(db)
	walletRepo := postgres.NewWalletRepository(db)
	txnRepo := postgres.NewTransactionRepository(db)
	promoRepo := postgres.NewPromoRepository(db)
	referralRepo := postgres.NewReferralRepository(db)
	userRepo := postgres.NewUserRepository(db)
	driverRepo := postgres.NewDriverProfileRepository(db)
	ratingRepo := postgres.NewRatingRepository(db)
	ratingConfigRepo := postgres.NewRatingConfigRepository(db)

	// Initialize services.
	notifier := service.NewLogNotifier()
	pricingService := service.NewPricingService()
	walletService := service.NewWalletService(uow, walletRepo, txnRepo)
	settlementService := service.NewSettlementService(uow, notifier)
	promoService := service.NewPromoService(uow, promoRepo)
	referralService := service.NewReferralService(uow, userRepo, referralRepo, rideRepo, cfg.Referral.Domain(), notifier)
	reputationService := service.NewReputationService(ratingRepo, ratingConfigRepo, rideRepo, userRepo, driverRepo, configCache, notifier)
	rideService := service.NewRideService(rideRepo, userRepo, driverRepo, pricingService, settlementService, referralService, lockStore, notifier)

	// Initialize handlers.
	rideHandler := handler.NewRideHandler(rideService, pricingService)
	walletHandler := handler.NewWalletHandler(walletService)
	promoHandler := handler.NewPromoHandler(promoService)
	referralHandler := handler.NewReferralHandler(referralService)
	ratingHandler := handler.NewRatingHandler(reputationService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		RideHandler:     rideHandler,
		WalletHandler:   walletHandler,
		PromoHandler:    promoHandler,
		ReferralHandler: referralHandler,
		RatingHandler:   ratingHandler,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
