package router

import (
	"time"

	"beautypos/internal/config"
	"beautypos/internal/handler"
	"beautypos/internal/infra"
	"beautypos/internal/journal"
	"beautypos/internal/middleware"
	"beautypos/internal/model"
	"beautypos/internal/pricing"
	"beautypos/internal/promotion"
	"beautypos/internal/repository"
	"beautypos/internal/service"
	"beautypos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// jnl and mailCB may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker, jnl *journal.Journal) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	promotionRepo := repository.NewCachedPromotionRepository(repository.NewPromotionRepository(db), rdb, cfg.PromotionCacheTTL())
	cashierRepo := repository.NewCashierRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	cartStore := repository.NewCartStore(rdb, cfg.CartTTL())

	// ── Services ─────────────────────────────────────────────────────────────
	dispatcher := worker.NewDispatcher(rdb)
	calc := pricing.NewCalculator(promotion.NewEngine(promotion.WithBundleMode(promotion.ParseBundleMode(cfg.BundleMode))))

	// A nil *journal.Journal must not reach the service as a non-nil interface.
	var opJournal service.OperationJournal
	if jnl != nil {
		opJournal = jnl
	}

	authzSvc := service.NewAuthorizationService(userRepo)
	cashierSvc := service.NewCashierService(cashierRepo, userRepo, orderRepo, authzSvc, opJournal, dispatcher, cfg.Location())
	cartSvc := service.NewCartService(cartStore, productRepo, promotionRepo, orderRepo, cashierSvc, calc, authzSvc, dispatcher)
	authSvc := service.NewAuthService(userRepo, cashierSvc, authzSvc, cfg)
	promotionSvc := service.NewPromotionService(promotionRepo, productRepo, calc)
	catalogSvc := service.NewCatalogService(productRepo, categoryRepo)
	reportSvc := service.NewReportService(orderRepo, cashierRepo, productRepo, cfg.Location())
	service.RegisterApprovals(authzSvc, cartSvc, cashierSvc, authSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	promotionsH := handler.NewPromotionsHandler(promotionSvc)
	cartH := handler.NewCartHandler(cartSvc)
	cashiersH := handler.NewCashiersHandler(cashierSvc)
	authzH := handler.NewAuthorizationsHandler(authzSvc)
	reportsH := handler.NewReportsHandler(reportSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		sell := middleware.RequireCapability(model.CapSell)
		operate := middleware.RequireCapability(model.CapOperateCashier)
		manageCashiers := middleware.RequireCapability(model.CapManageCashiers)
		manageCatalog := middleware.RequireCapability(model.CapManageCatalog)
		managePromotions := middleware.RequireCapability(model.CapManagePromotions)

		v1.POST("/auth/logout", authH.Logout)

		users := v1.Group("/users", middleware.RequireCapability(model.CapManageUsers))
		{
			users.GET("", usersH.List)
			users.POST("", usersH.Create)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}

		// Catalog — everyone who sells can read, writes need manage_catalog
		v1.GET("/products", sell, catalogH.ListProducts)
		v1.GET("/products/:id", sell, catalogH.GetProduct)
		v1.POST("/products", manageCatalog, catalogH.CreateProduct)
		v1.PUT("/products/:id", manageCatalog, catalogH.UpdateProduct)
		v1.GET("/categories", sell, catalogH.ListCategories)
		v1.POST("/categories", manageCatalog, catalogH.CreateCategory)

		promos := v1.Group("/promotions")
		{
			promos.GET("", sell, promotionsH.List)
			promos.GET("/:id", sell, promotionsH.Get)
			promos.POST("/available", sell, promotionsH.Available)
			promos.POST("/quote", sell, promotionsH.Quote)
			promos.POST("", managePromotions, promotionsH.Create)
			promos.PUT("/:id", managePromotions, promotionsH.Update)
			promos.PATCH("/:id/active", managePromotions, promotionsH.SetActive)
			promos.DELETE("/:id", managePromotions, promotionsH.Delete)
		}

		cart := v1.Group("/cart", sell)
		{
			cart.GET("", cartH.Get)
			cart.DELETE("", cartH.Clear)
			cart.POST("/items", cartH.AddItem)
			cart.PATCH("/items/:product_id", cartH.UpdateItem)
			cart.DELETE("/items/:product_id", cartH.RemoveItem)
			cart.PUT("/discount", cartH.SetDiscount)
			cart.DELETE("/discount", cartH.RemoveDiscount)
			cart.PUT("/promotion", cartH.SelectPromotion)
			cart.DELETE("/promotion", cartH.RemovePromotion)
			cart.POST("/checkout", cartH.Checkout)
		}

		cashiers := v1.Group("/cashiers")
		{
			cashiers.GET("", operate, cashiersH.List)
			cashiers.GET("/:id", operate, cashiersH.Get)
			cashiers.POST("", manageCashiers, cashiersH.Create)
			cashiers.PUT("/:id", manageCashiers, cashiersH.Update)
			cashiers.POST("/:id/open", operate, cashiersH.Open)
			cashiers.POST("/:id/deposit", operate, cashiersH.Deposit)
			cashiers.POST("/:id/withdrawal", operate, cashiersH.Withdrawal)
			cashiers.POST("/:id/close", operate, cashiersH.Close)
			cashiers.GET("/:id/balance", operate, cashiersH.Balance)
			cashiers.GET("/:id/history", manageCashiers, cashiersH.History)
			cashiers.GET("/:id/operations/:op_id/shortage", manageCashiers, cashiersH.Shortage)
		}

		// The gate belongs to the caller; the manager confirms on that terminal.
		authz := v1.Group("/authorizations")
		{
			authz.GET("", authzH.Pending)
			authz.POST("", authzH.Begin)
			authz.POST("/confirm", authzH.Confirm)
			authz.DELETE("", authzH.Cancel)
		}

		reports := v1.Group("/reports", middleware.RequireCapability(model.CapViewReports))
		{
			reports.GET("/sales", reportsH.Sales)
			reports.GET("/products", reportsH.Products)
			reports.GET("/customers", reportsH.Customers)
			reports.GET("/cashiers", reportsH.Cashiers)
			reports.GET("/stock", reportsH.Stock)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
