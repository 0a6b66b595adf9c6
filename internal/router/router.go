package router

import (
	"time"

	"github.com/Enochthedev/mintro-sub001/internal/config"
	"github.com/Enochthedev/mintro-sub001/internal/handler"
	"github.com/Enochthedev/mintro-sub001/internal/middleware"
	"github.com/Enochthedev/mintro-sub001/internal/repository"
	"github.com/Enochthedev/mintro-sub001/internal/service"
	"github.com/Enochthedev/mintro-sub001/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	transactionRepo := repository.NewTransactionRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	blueprintRepo := repository.NewBlueprintRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	allocationSvc := service.NewAllocationService(transactionRepo, invoiceRepo, allocationRepo, blueprintRepo)
	consumptionSvc := service.NewConsumptionService(blueprintRepo, inventoryRepo, invoiceRepo, cfg.MaxBatchUsages)
	inventorySvc := service.NewInventoryService(inventoryRepo)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, allocationRepo, blueprintRepo)
	purgeSvc := service.NewPurgeService(invoiceRepo, allocationRepo, blueprintRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	allocationsH := handler.NewAllocationsHandler(allocationSvc)
	usagesH := handler.NewUsagesHandler(consumptionSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	invoicesH := handler.NewInvoicesHandler(invoiceSvc)
	purgeH := handler.NewPurgeHandler(purgeSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/blueprint-usages", usagesH.Create)
		v1.POST("/blueprint-usages/batch", usagesH.CreateBatch)
		v1.DELETE("/blueprint-usages", purgeH.DeleteAllUsages)

		v1.POST("/allocations", allocationsH.Link)
		v1.DELETE("/allocations", allocationsH.Unlink)
		v1.DELETE("/allocations/:id", allocationsH.UnlinkByID)
		v1.POST("/expense-allocations", allocationsH.LinkExpense)
		v1.DELETE("/expense-allocations/:id", allocationsH.UnlinkExpense)

		inv := v1.Group("/inventory")
		{
			inv.POST("/adjust", inventoryH.Adjust)
			inv.GET("/alerts", inventoryH.Alerts)
			inv.GET("/movements", inventoryH.Movements)
		}

		invoices := v1.Group("/invoices")
		{
			invoices.GET("/profit-summary", invoicesH.ProfitSummary)
			invoices.GET("/:id/profit", invoicesH.Profit)
			invoices.PUT("/:id", invoicesH.Update)
		}
		v1.DELETE("/invoices", purgeH.DeleteAllInvoices)
	}

	return r
}
