package router

import (
	"time"

	"github.com/ChristianJLC/web/internal/config"
	"github.com/ChristianJLC/web/internal/handler"
	"github.com/ChristianJLC/web/internal/infra"
	"github.com/ChristianJLC/web/internal/middleware"
	"github.com/ChristianJLC/web/internal/observability"
	"github.com/ChristianJLC/web/internal/repository"
	"github.com/ChristianJLC/web/internal/service"
	"github.com/ChristianJLC/web/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options carries the optional collaborators built in cmd/server.
type Options struct {
	Metrics *observability.Metrics
	// Dispatcher enqueues low-stock alerts; nil disables them.
	Dispatcher *worker.Dispatcher
	// MailBreaker is only reported by /health.
	MailBreaker *infra.CircuitBreaker
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil: token revocation is then skipped.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, opts Options) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(opts.Metrics.Middleware())
	r.Use(middleware.SecureHeaders(cfg.IsProduction()))
	r.Use(middleware.CORS(cfg.Origins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute, "Demasiadas solicitudes. Intente nuevamente en un momento.")) // per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	movimientoRepo := repository.NewMovimientoStockRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	compraRepo := repository.NewCompraRepository(db)
	ventaRepo := repository.NewVentaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	stockSvc := service.NewStockService(productoRepo, movimientoRepo, opts.Metrics, opts.Dispatcher)
	authSvc := service.NewAuthService(usuarioRepo, cfg, rdb)
	productoSvc := service.NewProductoService(productoRepo, movimientoRepo)
	proveedorSvc := service.NewProveedorService(proveedorRepo)
	compraSvc := service.NewCompraService(compraRepo, proveedorRepo, productoRepo, stockSvc)
	ventaSvc := service.NewVentaService(ventaRepo, stockSvc, cfg.VentasValidarStockEdicion)
	dashboardSvc := service.NewDashboardService(productoRepo, compraRepo, ventaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc, cfg.IsProduction())
	productosH := handler.NewProductosHandler(productoSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	comprasH := handler.NewComprasHandler(compraSvc, cfg.NombreNegocio)
	ventasH := handler.NewVentasHandler(ventaSvc, cfg.NombreNegocio)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, opts.MailBreaker))
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", middleware.LoginRateLimiter(), authH.Refresh)
	}

	// Protected routes
	v1 := r.Group("/v1", middleware.SessionGate(authSvc, cfg.LoginPath))
	{
		v1.POST("/auth/logout", authH.Logout)
		v1.GET("/auth/me", authH.Me)

		v1.GET("/dashboard", dashboardH.Resumen)

		prods := v1.Group("/productos")
		{
			prods.GET("", productosH.Listar)
			prods.POST("", productosH.Crear)
			prods.GET("/:id", productosH.Obtener)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Eliminar)
			prods.GET("/:id/movimientos", productosH.Movimientos)
		}

		prov := v1.Group("/proveedores")
		{
			prov.GET("", proveedoresH.Listar)
			prov.POST("", proveedoresH.Crear)
			prov.GET("/:id", proveedoresH.Obtener)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.DELETE("/:id", proveedoresH.Eliminar)
		}

		compras := v1.Group("/compras")
		{
			compras.GET("", comprasH.Listar)
			compras.POST("", comprasH.Crear)
			compras.GET("/:id", comprasH.Obtener)
			compras.PUT("/:id", comprasH.Actualizar)
			compras.DELETE("/:id", comprasH.Eliminar)
			compras.GET("/:id/pdf", comprasH.PDF)
		}

		ventas := v1.Group("/ventas")
		{
			ventas.GET("", ventasH.Listar)
			ventas.POST("", ventasH.Crear)
			ventas.GET("/:id", ventasH.Obtener)
			ventas.PUT("/:id", ventasH.Actualizar)
			ventas.DELETE("/:id", ventasH.Eliminar)
			ventas.GET("/:id/pdf", ventasH.PDF)
		}
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
