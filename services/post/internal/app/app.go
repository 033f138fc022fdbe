package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finsight/pkg/cache"
	"finsight/pkg/config"
	"finsight/pkg/database"
	"finsight/pkg/jwt"
	"finsight/pkg/logger"
	"finsight/pkg/middleware"
	"finsight/pkg/queue"
	"finsight/pkg/s3"
	"finsight/pkg/session"
	postHTTP "finsight/services/post/internal/controller/http"
	postCache "finsight/services/post/internal/repo/cache"
	"finsight/services/post/internal/repo/persistent"
	"finsight/services/post/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	_ "finsight/services/post/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	queueClient *queue.Client
	sessions    *session.Manager
	httpServer  *http.Server

	adminUseCase usecase.AdminUseCase
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.NewWithLevel(cfg.LogLevel).Named("post")

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		return nil, err
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		return nil, err
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Warn("Failed to create S3 client: %v (cover uploads disabled)", err)
		s3Client = nil
	}

	var queueClient *queue.Client
	if cfg.RabbitMQHost != "" {
		queueClient, err = queue.NewRabbitMQClient(cfg, log.Named("queue"))
		if err != nil {
			log.Error("Failed to connect to RabbitMQ: %v (continuing without events)", err)
			queueClient = nil
		}
	}

	sessions := session.NewManager(
		jwt.NewService(cfg.JWTSecret, cfg.SessionTTL),
		session.NewRedisStore(redisClient),
	)

	return &App{
		cfg:         cfg,
		log:         log,
		db:          db,
		redisClient: redisClient,
		s3Client:    s3Client,
		queueClient: queueClient,
		sessions:    sessions,
	}, nil
}

// Router builds the gin engine with every route wired.
func (a *App) Router() *gin.Engine {
	// Initialize repositories
	postRepo := persistent.NewPostRepository(a.db)
	listCache := postCache.NewPostListCache(a.redisClient, a.cfg.PostListCacheTTL)

	// Optional collaborators stay nil interfaces when absent
	var media usecase.MediaStore
	if a.s3Client != nil {
		media = a.s3Client
	}
	var events usecase.EventPublisher
	if a.queueClient != nil {
		events = a.queueClient
	}

	// Initialize use cases
	viewCounter := usecase.NewViewCounter(postRepo, a.cfg.ViewCounterMode, a.log.Named("views"))
	postUseCase := usecase.NewPostUseCase(postRepo, listCache, viewCounter, a.log)
	adminUseCase := usecase.NewAdminUseCase(postRepo, listCache, media, events, a.log.Named("admin"))
	a.adminUseCase = adminUseCase

	// Initialize HTTP handlers
	postHandler := postHTTP.NewPostHandler(postUseCase, a.log)
	adminHandler := postHTTP.NewAdminHandler(adminUseCase, a.log)

	// Setup router
	r := gin.New()
	r.Use(gin.Recovery())
	if a.log.Level() == zapcore.DebugLevel {
		r.Use(gin.Logger())
	}

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "view_counter": viewCounter.Mode()})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	rateLimit := middleware.RateLimitMiddleware(a.redisClient, a.cfg.RateLimit, a.cfg.RateLimitWindow)

	api := r.Group("/api/v1")
	{
		// Signed-in admins are rate limited by user id instead of IP
		public := api.Group("")
		public.Use(middleware.OptionalAuthMiddleware(a.sessions))
		public.Use(rateLimit)
		{
			public.GET("/posts", postHandler.ListPosts)
			public.GET("/posts/featured", postHandler.FeaturedPosts)
			public.GET("/posts/:slug", postHandler.GetPost)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(a.sessions))
		admin.Use(rateLimit)
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.POST("/posts", adminHandler.CreatePost)
			admin.PUT("/posts/:slug", adminHandler.UpdatePost)
			admin.DELETE("/posts/:slug", adminHandler.DeletePost)
			admin.POST("/media/cover", adminHandler.UploadCover)
		}
	}

	return r
}

func (a *App) Run() error {
	a.httpServer = &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		a.log.Info("Post service starting on port %s (view counter: %s)", a.cfg.ServerPort, a.cfg.ViewCounterMode)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) Wait() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down post service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Stop accepting requests before closing the backends they use
	var shutdownErr error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.log.Error("Server forced to shutdown: %v", err)
			shutdownErr = err
		}
	}

	// Events from the last writes still need the queue connection
	if a.adminUseCase != nil {
		if err := a.adminUseCase.Flush(ctx); err != nil {
			a.log.Warn("Gave up waiting for pending post events: %v", err)
		}
	}

	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	sqlDB, err := a.db.DB()
	if err == nil {
		if err := sqlDB.Close(); err != nil {
			a.log.Error("Error closing database: %v", err)
		}
	}

	a.log.Info("Post service exited")
	a.log.Sync()
	return shutdownErr
}
