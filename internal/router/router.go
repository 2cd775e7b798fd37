package router

import (
	"fmt"
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/cache"
	"github.com/3syncai/affiliate-portal-sub001/internal/config"
	adminhandlers "github.com/3syncai/affiliate-portal-sub001/internal/http/handlers/admin"
	publichandlers "github.com/3syncai/affiliate-portal-sub001/internal/http/handlers/public"
	"github.com/3syncai/affiliate-portal-sub001/internal/logger"
	"github.com/3syncai/affiliate-portal-sub001/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter wires the webhook, portal and admin route groups.
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "aff"
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}
	webhookRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:webhook", redisPrefix),
		WindowSeconds: cfg.Security.WebhookRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.WebhookRateLimit.MaxRequests,
		Message:       "too many webhook deliveries",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// Storefront webhooks. Attribution and crediting must never
		// block the caller, so these only reject malformed payloads.
		webhooks := apiV1.Group("/webhooks")
		webhooks.Use(RateLimitMiddleware(redisClient, webhookRule, KeyByIP))
		{
			webhooks.POST("/orders", publicHandler.ReceiveOrderEvent)
			webhooks.POST("/orders/:order_id/delivered", publicHandler.ConfirmOrderDelivery)
		}

		// Affiliate portal, keyed by actor role and ID.
		portal := apiV1.Group("/portal/:role/:id")
		{
			portal.GET("/balance", publicHandler.GetBalance)
			portal.GET("/commissions", publicHandler.ListCommissions)
			portal.GET("/withdrawals", publicHandler.ListWithdrawals)
			portal.POST("/withdrawals", publicHandler.RequestWithdrawal)
			portal.POST("/withdrawals/:request_id/cancel", publicHandler.CancelWithdrawal)
			portal.GET("/activity", publicHandler.ListActivity)
		}

		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.Login)

			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/me", adminHandler.Me)
				authorized.PUT("/password", adminHandler.UpdatePassword)

				// Rate registry
				authorized.GET("/commission-rates", adminHandler.ListCommissionRates)
				authorized.PUT("/commission-rates/:role_type", adminHandler.UpdateCommissionRate)

				// Actor tiers
				authorized.GET("/actors/:role", adminHandler.ListActors)
				authorized.POST("/actors/:role", adminHandler.CreateActor)
				authorized.PUT("/actors/:role/:id/status", adminHandler.SetActorStatus)

				// Catalog with commission pools
				authorized.GET("/products", adminHandler.ListProducts)
				authorized.GET("/products/:id", adminHandler.GetProduct)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.PUT("/products/:id", adminHandler.UpdateProduct)
				authorized.POST("/categories", adminHandler.CreateCategory)
				authorized.POST("/collections", adminHandler.CreateCollection)

				// Ledger
				authorized.GET("/ledger", adminHandler.ListLedgerEntries)
				authorized.GET("/ledger/summary", adminHandler.GetLedgerSummary)
				authorized.GET("/ledger/orders/:order_id", adminHandler.GetOrderLedger)

				// Activity feed
				authorized.GET("/activity", adminHandler.ListActivity)

				// Withdrawal review
				authorized.GET("/withdrawals", adminHandler.ListWithdrawals)
				authorized.GET("/withdrawals/:id", adminHandler.GetWithdrawal)
				authorized.POST("/withdrawals/:id/approve", adminHandler.ApproveWithdrawal)
				authorized.POST("/withdrawals/:id/reject", adminHandler.RejectWithdrawal)
				authorized.POST("/withdrawals/:id/pay", adminHandler.PayWithdrawal)
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
