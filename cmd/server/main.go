package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"contractbill-system/config"
	"contractbill-system/internal/database"
	"contractbill-system/internal/gateway/handlers"
	"contractbill-system/internal/gateway/middleware"
	"contractbill-system/internal/services/auth"
	"contractbill-system/internal/services/drawdown"
	"contractbill-system/internal/services/entity"
	"contractbill-system/internal/services/ledger"
	"contractbill-system/internal/services/placement"
	"contractbill-system/internal/services/plan"
	"contractbill-system/internal/services/recognition"
	"contractbill-system/internal/services/reporting"
	"contractbill-system/internal/services/settings"
	"contractbill-system/internal/utils"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.MigrateCommissionDB(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)
	utils.SetSecret(cfg.Auth.JWTSecret)

	ledgerSvc := ledger.NewService(db)
	settingsSvc := settings.NewService(db, redisClient)
	recognitionSvc := recognition.NewService(db, ledgerSvc, settingsSvc)
	drawdownSvc := drawdown.NewService(db, ledgerSvc, settingsSvc)
	placementSvc := placement.NewService(db, ledgerSvc, settingsSvc, recognitionSvc)
	planSvc := plan.NewService(db, ledgerSvc)
	entitySvc := entity.NewService(db)
	reportingSvc := reporting.NewService(db, ledgerSvc, redisClient)
	authSvc := auth.NewService(db, cfg.Auth.TokenTTL)

	if err := settingsSvc.InitializeDefaults(context.Background()); err != nil {
		log.Fatalf("Failed to initialize policy settings: %v", err)
	}

	authHandler := handlers.NewAuthHTTPHandler(authSvc)
	entityHandler := handlers.NewEntityHTTPHandler(entitySvc)
	placementHandler := handlers.NewPlacementHTTPHandler(placementSvc)
	commissionHandler := handlers.NewCommissionHTTPHandler(planSvc, recognitionSvc, ledgerSvc)
	drawdownHandler := handlers.NewDrawdownHTTPHandler(drawdownSvc)
	settingsHandler := handlers.NewSettingsHTTPHandler(settingsSvc)
	reportingHandler := handlers.NewReportingHTTPHandler(reportingSvc)

	r := gin.Default()

	r.Use(middleware.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		authGroup := public.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/register", authHandler.Register)
		}
	}

	// --- Protected API Group ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth())
	{
		salespeople := protected.Group("/salespeople")
		{
			salespeople.POST("", entityHandler.CreateSalesperson)
			salespeople.GET("", entityHandler.ListSalespeople)
			salespeople.GET("/:id", entityHandler.GetSalesperson)
			salespeople.DELETE("/:id", entityHandler.DeactivateSalesperson)
			salespeople.GET("/:id/placements", placementHandler.ListBySalesperson)
			salespeople.GET("/:id/plans", commissionHandler.ListPlansBySalesperson)
			salespeople.GET("/:id/ledger", commissionHandler.ListLedgerBySalesperson)
			salespeople.GET("/:id/balance", commissionHandler.GetBalance)
			salespeople.GET("/:id/drawdowns", drawdownHandler.ListBySalesperson)
			salespeople.GET("/:id/drawdowns/eligibility", drawdownHandler.CheckEligibility)
			salespeople.GET("/:id/summary", reportingHandler.SalespersonSummary)
			salespeople.GET("/:id/forecast", reportingHandler.RecognitionForecast)
		}

		clients := protected.Group("/clients")
		{
			clients.POST("", entityHandler.CreateClient)
			clients.GET("", entityHandler.ListClients)
			clients.GET("/:id", entityHandler.GetClient)
			clients.GET("/:id/placements", placementHandler.ListByClient)
		}

		contractors := protected.Group("/contractors")
		{
			contractors.POST("", entityHandler.CreateContractor)
			contractors.GET("", entityHandler.ListContractors)
			contractors.GET("/:id", entityHandler.GetContractor)
		}

		placements := protected.Group("/placements")
		{
			placements.POST("", placementHandler.CreatePlacement)
			placements.GET("/:id", placementHandler.GetPlacement)
			placements.PUT("/:id", placementHandler.UpdatePlacement)
		}

		plans := protected.Group("/plans")
		{
			plans.GET("/:id", commissionHandler.GetPlan)
			plans.POST("/:id/confirm", commissionHandler.ConfirmPlan)
			plans.POST("/:id/reverse", commissionHandler.ReversePlan)
			plans.GET("/:id/schedule", commissionHandler.GetSchedule)
			plans.GET("/:id/ledger", commissionHandler.ListLedgerByPlan)
		}

		recognitionGroup := protected.Group("/recognition")
		{
			recognitionGroup.POST("/run", commissionHandler.RunRecognition)
			recognitionGroup.POST("/schedules/:id/recognize", commissionHandler.RecognizeEntry)
		}

		drawdowns := protected.Group("/drawdowns")
		{
			drawdowns.POST("", drawdownHandler.CreateRequest)
			drawdowns.GET("/pending", drawdownHandler.ListPending)
			drawdowns.GET("/:id", drawdownHandler.GetRequest)
			drawdowns.POST("/:id/approve", drawdownHandler.Approve)
			drawdowns.POST("/:id/reject", drawdownHandler.Reject)
			drawdowns.POST("/:id/pay", drawdownHandler.ProcessPayment)
		}

		settingsGroup := protected.Group("/settings")
		{
			settingsGroup.GET("", settingsHandler.GetSettings)
			settingsGroup.PUT("", settingsHandler.UpdateSettings)
		}
	}

	log.Printf("Commission service listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
