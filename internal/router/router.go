package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"andespos/internal/config"
	"andespos/internal/handler"
	"andespos/internal/middleware"
	"andespos/internal/model"
	"andespos/internal/repository"
	"andespos/internal/service"
	"andespos/internal/worker"
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
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	cashboxRepo := repository.NewCashboxRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	creditNoteRepo := repository.NewCreditNoteRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	catalogSvc := service.NewCatalogService(accountRepo, clientRepo)
	cashboxSvc := service.NewCashboxService(cashboxRepo, ledgerRepo, accountRepo, dispatcher,
		log.With().Str("component", "cashbox").Logger())
	ledgerSvc := service.NewLedgerService(ledgerRepo, cashboxRepo, accountRepo,
		log.With().Str("component", "ledger").Logger())
	saleSvc := service.NewSaleService(saleRepo, clientRepo,
		log.With().Str("component", "sales").Logger())
	paymentSvc := service.NewPaymentService(saleRepo, ledgerRepo, walletRepo, cashboxRepo, accountRepo, clientRepo, dispatcher,
		log.With().Str("component", "payments").Logger())
	refundSvc := service.NewRefundService(creditNoteRepo, saleRepo, ledgerRepo, walletRepo, cashboxRepo, accountRepo,
		log.With().Str("component", "refunds").Logger())
	walletSvc := service.NewWalletService(walletRepo, clientRepo, ledgerRepo, cashboxRepo, accountRepo,
		log.With().Str("component", "wallets").Logger())

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	cashboxH := handler.NewCashboxHandler(cashboxSvc)
	ledgerH := handler.NewLedgerHandler(ledgerSvc)
	saleH := handler.NewSaleHandler(saleSvc)
	paymentH := handler.NewPaymentHandler(paymentSvc)
	refundH := handler.NewRefundHandler(refundSvc)
	walletH := handler.NewWalletHandler(walletSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleCashier, model.RoleSupervisor, model.RoleAdmin)
	supervision := middleware.RequireRole(model.RoleSupervisor, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		caja := v1.Group("/caja")
		{
			caja.POST("/abrir", anyRole, cashboxH.Open)
			caja.POST("/cerrar", anyRole, cashboxH.Close)
			caja.GET("/activa", anyRole, cashboxH.Active)
			caja.GET("/historial", supervision, cashboxH.History)
			caja.GET("/:id", anyRole, cashboxH.Session)
			caja.GET("/:id/saldos", anyRole, cashboxH.RunningBalances)
		}

		v1.POST("/movimientos", anyRole, ledgerH.Record)
		v1.GET("/movimientos", anyRole, ledgerH.List)
		v1.GET("/movimientos/saldo", anyRole, ledgerH.Balance)

		v1.POST("/ventas", anyRole, saleH.Create)
		v1.GET("/ventas/por-cobrar", anyRole, saleH.Receivables)
		v1.GET("/ventas/:id", anyRole, saleH.Get)
		v1.GET("/ventas/:id/notas-credito", anyRole, refundH.ListBySale)

		v1.POST("/pagos", anyRole, paymentH.Register)

		// Refunds move money out — supervision required
		v1.POST("/notas-credito", supervision, refundH.Create)
		v1.GET("/notas-credito/:id", anyRole, refundH.Get)

		v1.POST("/clientes", anyRole, catalogH.CreateClient)
		v1.GET("/clientes", anyRole, catalogH.ListClients)
		v1.GET("/clientes/:id", anyRole, catalogH.GetClient)
		v1.GET("/clientes/:id/billetera", anyRole, walletH.Get)
		v1.GET("/clientes/:id/billetera/movimientos", anyRole, walletH.Entries)
		v1.POST("/clientes/:id/billetera/depositos", anyRole, walletH.Deposit)
		v1.POST("/clientes/:id/billetera/retiros", supervision, walletH.Withdraw)

		v1.POST("/cuentas", adminOnly, catalogH.CreateAccount)
		v1.GET("/cuentas", anyRole, catalogH.ListAccounts)

		v1.POST("/auth/usuarios", adminOnly, authH.CreateUser)
		v1.GET("/auth/usuarios", adminOnly, authH.ListUsers)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
