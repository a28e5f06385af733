package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/amaravathi/marketplace/internal/auth"
	"github.com/amaravathi/marketplace/internal/cache"
	"github.com/amaravathi/marketplace/internal/config"
	"github.com/amaravathi/marketplace/internal/http/handlers"
	"github.com/amaravathi/marketplace/internal/http/middlewares"
	"github.com/amaravathi/marketplace/internal/observability"
	"github.com/amaravathi/marketplace/internal/repo/postgres"
	"github.com/amaravathi/marketplace/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(
	log *slog.Logger,
	pool *pgxpool.Pool,
	cfg config.Config,
	imageStore *storage.ImageStore,
	listCache *cache.Cache,
	prom *observability.Prom,
	reg *prometheus.Registry,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(8 << 20))
	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}
	r.Use(otelgin.Middleware("marketplace"))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// a typed nil pointer must not end up inside the interface
	var images handlers.ImageUploader
	if imageStore != nil {
		images = imageStore
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	vendorsRepo := postgres.NewVendorsRepo(pool, prom)
	categoriesRepo := postgres.NewCategoriesRepo(pool, prom)
	subCategoriesRepo := postgres.NewSubCategoriesRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())

	authMW := middlewares.NewAuthMiddleware(jwtManager, usersRepo, vendorsRepo)
	gate := authMW.RequireAuth()

	// slow down credential guessing on the open endpoints
	credLimiter := middlewares.NewRateLimiter(10, time.Minute)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, images, log)
	vendorsHandler := handlers.NewVendorsHandler(vendorsRepo, jwtManager, images, listCache, log)
	categoriesHandler := handlers.NewCategoriesHandler(categoriesRepo, images, listCache, log)
	subCategoriesHandler := handlers.NewSubCategoriesHandler(subCategoriesRepo, images, listCache, log)

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.POST("/signup", credLimiter.ByIP(), authHandler.SignUp)
	authRoutes.POST("/login", credLimiter.ByIP(), authHandler.Login)
	authRoutes.GET("/me", gate, authHandler.Me)

	vendorRoutes := api.Group("/vendors")
	vendorRoutes.GET("", vendorsHandler.List)
	vendorRoutes.POST("", credLimiter.ByIP(), vendorsHandler.Register)
	vendorRoutes.POST("/login", credLimiter.ByIP(), vendorsHandler.Login)
	vendorRoutes.GET("/me", gate, vendorsHandler.Me)
	vendorRoutes.PUT("/:id", gate, vendorsHandler.Update)
	vendorRoutes.DELETE("/:id", gate, vendorsHandler.Delete)

	adminRoutes := api.Group("/admin")
	adminRoutes.POST("/categories", gate, categoriesHandler.Create)
	adminRoutes.GET("/categories", categoriesHandler.List)
	adminRoutes.PUT("/categories/:id", gate, categoriesHandler.Update)
	adminRoutes.DELETE("/categories/:id", gate, categoriesHandler.Delete)

	adminRoutes.POST("/subcategories", gate, subCategoriesHandler.Create)
	adminRoutes.GET("/subcategories", subCategoriesHandler.List)
	adminRoutes.PUT("/subcategories/:id", gate, subCategoriesHandler.Update)
	adminRoutes.DELETE("/subcategories/:id", gate, subCategoriesHandler.Delete)

	return r
}
