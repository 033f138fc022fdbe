package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finsight/pkg/cache"
	"finsight/pkg/config"
	"finsight/pkg/jwt"
	"finsight/pkg/logger"
	"finsight/pkg/middleware"
	"finsight/pkg/queue"
	"finsight/pkg/session"
	notificationHTTP "finsight/services/notification/internal/controller/http"
	"finsight/services/notification/internal/repo/feed"
	"finsight/services/notification/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "finsight/services/notification/docs" // Swagger docs
)

type App struct {
	cfg                 *config.Config
	log                 *logger.Logger
	redisClient         *redis.Client
	queueClient         *queue.Client
	sessions            *session.Manager
	notificationUseCase usecase.NotificationUseCase
	httpServer          *http.Server
	stopConsumer        context.CancelFunc
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.NewWithLevel(cfg.LogLevel).Named("notification")

	if cfg.RabbitMQHost == "" {
		return nil, errors.New("RABBITMQ_HOST must be set for the notification service")
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		return nil, err
	}

	queueClient, err := queue.NewRabbitMQClient(cfg, log.Named("queue"))
	if err != nil {
		log.Error("Failed to connect to RabbitMQ: %v", err)
		redisClient.Close()
		return nil, err
	}

	sessions := session.NewManager(
		jwt.NewService(cfg.JWTSecret, cfg.SessionTTL),
		session.NewRedisStore(redisClient),
	)

	return &App{
		cfg:                 cfg,
		log:                 log,
		redisClient:         redisClient,
		queueClient:         queueClient,
		sessions:            sessions,
		notificationUseCase: usecase.NewNotificationUseCase(feed.NewNotificationFeed(redisClient), log),
	}, nil
}

func (a *App) Router() *gin.Engine {
	notificationHandler := notificationHTTP.NewNotificationHandler(a.notificationUseCase, a.log)

	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	protected := r.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware(a.sessions))
	{
		protected.GET("/notifications", notificationHandler.GetNotifications)
	}

	return r
}

func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopConsumer = cancel

	if err := a.queueClient.ConsumePostEvents(ctx, a.notificationUseCase.HandlePostEvent); err != nil {
		cancel()
		return err
	}

	a.httpServer = &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.log.Info("Notification service starting on port %s", a.cfg.ServerPort)
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
	a.log.Info("Shutting down notification service...")
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.stopConsumer != nil {
		a.stopConsumer()
	}

	var shutdownErr error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.log.Error("Server forced to shutdown: %v", err)
			shutdownErr = err
		}
	}

	if err := a.queueClient.Close(); err != nil {
		a.log.Error("Error closing RabbitMQ: %v", err)
	}

	if err := a.redisClient.Close(); err != nil {
		a.log.Error("Error closing Redis: %v", err)
	}

	a.log.Info("Notification service exited")
	a.log.Sync()
	return shutdownErr
}
