package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "restaurant-catalog/api/swagger" // swagger docs
	"restaurant-catalog/internal/auth"
	"restaurant-catalog/internal/config"
	"restaurant-catalog/internal/database"
	"restaurant-catalog/internal/handler"
	"restaurant-catalog/internal/logger"
	"restaurant-catalog/internal/metrics"
	"restaurant-catalog/internal/middleware"
	"restaurant-catalog/internal/repository"
	"restaurant-catalog/internal/service"
	"restaurant-catalog/internal/storage"
	"restaurant-catalog/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const serviceName = "restaurant-catalog"

// @title           Restaurant Catalog API
// @version         1.0
// @description     Multi-tenant restaurant catalog: admins manage restaurants, restaurants manage their menu, the public browses.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.Init(logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Log.Environment,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting "+serviceName, cfg.LogFields()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}

	store, err := newBlobStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("Blob store setup failed", zap.Error(err))
	}

	httpMetrics := metrics.NewHTTPMetrics(cfg.ServiceName)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)

	// Set up dependencies (Repository -> Service -> Handler)
	restaurantRepo := repository.NewRestaurantRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	authService := service.NewAuthService(userRepo, restaurantRepo, tokens)
	restaurantService := service.NewRestaurantService(restaurantRepo, productRepo, auditRepo, txManager, wsHub)
	categoryService := service.NewCategoryService(categoryRepo, auditRepo, txManager, wsHub)
	productService := service.NewProductService(productRepo, restaurantRepo, categoryRepo, auditRepo, txManager, wsHub)
	mediaService := service.NewMediaService(store, productRepo, restaurantRepo, auditRepo, txManager, wsHub, httpMetrics)
	auditService := service.NewAuditService(auditRepo)

	if cfg.Admin.Password == "" {
		log.Warn("ADMIN_PASSWORD is not set, skipping admin bootstrap")
	} else {
		created, err := authService.BootstrapAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatal("Admin bootstrap failed", zap.Error(err))
		}
		if created {
			log.Info("Admin account created", zap.String("username", cfg.Admin.Username))
		}
	}

	// Set up Gin Router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), logger.Middleware(), httpMetrics.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/metrics", gin.WrapH(httpMetrics.Handler()))

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, tokens)
	})

	if !cfg.Storage.UseS3() && strings.HasPrefix(cfg.Storage.PublicUploadURL, "/") {
		router.Static(cfg.Storage.PublicUploadURL, cfg.Storage.UploadDir)
	}

	secureCookies := cfg.Server.GinMode == gin.ReleaseMode
	handler.RegisterAPI(router, middleware.Authenticate(tokens), handler.Handlers{
		Auth:        handler.NewAuthHandler(authService, cfg.JWT.TTL, secureCookies),
		Restaurants: handler.NewRestaurantHandler(restaurantService),
		Categories:  handler.NewCategoryHandler(categoryService),
		Products:    handler.NewProductHandler(productService),
		Media:       handler.NewMediaHandler(mediaService),
		Audit:       handler.NewAuditHandler(auditService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newBlobStore picks S3 when a bucket is configured and the local upload
// directory otherwise.
func newBlobStore(ctx context.Context, cfg config.StorageConfig) (storage.BlobStore, error) {
	if cfg.UseS3() {
		return storage.NewS3Store(ctx, cfg)
	}
	return storage.NewLocalStore(cfg.UploadDir, cfg.PublicUploadURL)
}
