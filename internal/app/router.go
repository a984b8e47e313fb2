package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"afrigo/internal/handler"
	"afrigo/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler     *handler.RideHandler
	WalletHandler   *handler.WalletHandler
	PromoHandler    *handler.PromoHandler
	ReferralHandler *handler.ReferralHandler
	RatingHandler   *handler.RatingHandler
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes. Everything past this point requires an identity.
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware())
	v1.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	{
		// Ride lifecycle.
		rides := v1.Group("/rides")
		{
			rides.POST("/estimate", deps.RideHandler.Estimate)
			rides.POST("", deps.RideHandler.RequestRide)
			rides.GET("", deps.RideHandler.ListMyRides)
			rides.GET("/open", deps.RideHandler.ListOpenRides)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/accept", deps.RideHandler.AcceptRide)
			rides.PATCH("/:id/status", deps.RideHandler.UpdateStatus)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
		}

		// Wallet ledger.
		wallet := v1.Group("/wallet")
		{
			wallet.POST("/deposit", deps.WalletHandler.Deposit)
			wallet.POST("/withdraw", deps.WalletHandler.Withdraw)
			wallet.GET("/balance", deps.WalletHandler.GetBalance)
			wallet.GET("/transactions", deps.WalletHandler.ListTransactions)
		}

		// Promo codes.
		promos := v1.Group("/promos")
		{
			promos.POST("/validate", deps.PromoHandler.Validate)
			promos.POST("/apply", deps.PromoHandler.Apply)
		}

		// Referral programme.
		referrals := v1.Group("/referrals")
		{
			referrals.GET("", deps.ReferralHandler.ListMine)
			referrals.GET("/code", deps.ReferralHandler.MyCode)
			referrals.POST("/apply", deps.ReferralHandler.Apply)
		}

		// Ratings.
		v1.POST("/ratings", deps.RatingHandler.Submit)

		// Backoffice.
		admin := v1.Group("/admin")
		{
			admin.POST("/promos", deps.PromoHandler.Create)
			admin.GET("/promos", deps.PromoHandler.List)
			admin.PATCH("/promos/:id", deps.PromoHandler.SetActive)
			admin.GET("/reputation/config", deps.RatingHandler.GetConfig)
			admin.PUT("/reputation/config", deps.RatingHandler.UpdateConfig)
			admin.GET("/reputation/at-risk", deps.RatingHandler.ListAtRisk)
			admin.POST("/reputation/:userId/reset", deps.RatingHandler.ResetReputation)
		}
	}

	return router
}
