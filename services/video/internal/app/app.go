package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mediashare/pkg/cache"
	"mediashare/pkg/config"
	"mediashare/pkg/database"
	"mediashare/pkg/jwt"
	"mediashare/pkg/logger"
	"mediashare/pkg/middleware"
	"mediashare/pkg/queue"
	"mediashare/pkg/s3"
	videoHTTP "mediashare/services/video/internal/controller/http"
	"mediashare/services/video/internal/repo/persistent"
	"mediashare/services/video/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	_ "mediashare/services/video/docs" // Swagger docs
)

type App struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *gorm.DB
	mongoDB     *mongo.Database
	redisClient *redis.Client
	s3Client    *s3.Client
	jwtService  *jwt.Service
	queueClient *queue.Client
	httpServer  *http.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	log := logger.New()
	a := &App{cfg: cfg, log: log}

	switch cfg.VideoStore {
	case config.StoreMongo:
		mongoDB, err := database.NewMongoDatabase(cfg)
		if err != nil {
			log.Error("Failed to connect to MongoDB: %v", err)
			return nil, err
		}
		a.mongoDB = mongoDB
	case config.StorePostgres:
		db, err := database.NewPostgresDB(cfg)
		if err != nil {
			log.Error("Failed to connect to database: %v", err)
			return nil, err
		}
		a.db = db
	default:
		return nil, fmt.Errorf("unknown VIDEO_STORE %q", cfg.VideoStore)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v (continuing without rate limiting)", err)
		redisClient = nil
	}
	a.redisClient = redisClient

	s3Client, err := s3.NewClient(cfg, log)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		return nil, err
	}
	a.s3Client = s3Client

	if cfg.QueueEnabled() {
		queueClient, err := queue.NewRabbitMQClient(cfg, log)
		if err != nil {
			log.Error("Failed to connect to RabbitMQ: %v (continuing without queue)", err)
		} else {
			a.queueClient = queueClient
		}
	}

	a.jwtService = jwt.NewService(cfg.JWTSecret)
	return a, nil
}

func (a *App) Run() error {
	// Initialize repositories
	videoRepo, err := a.videoRepository()
	if err != nil {
		return err
	}

	// Initialize use cases
	var events usecase.EventPublisher
	if a.queueClient != nil {
		events = a.queueClient
	}
	videoUseCase := usecase.NewVideoUseCase(videoRepo, a.s3Client, events, a.log)

	// Initialize HTTP handlers
	videoHandler := videoHTTP.NewVideoHandler(videoUseCase, a.cfg.UploadDir, a.log)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(a.jwtService))
	api.Use(middleware.RateLimitMiddleware(a.redisClient, a.cfg.RateLimitPerMinute, time.Minute))
	{
		api.GET("/videos", videoHandler.ListVideos)
		api.POST("/videos", videoHandler.PublishVideo)
		api.GET("/videos/:videoId", videoHandler.GetVideo)
		api.PATCH("/videos/:videoId", videoHandler.UpdateVideo)
		api.DELETE("/videos/:videoId", videoHandler.DeleteVideo)
		api.PATCH("/videos/toggle/publish/:videoId", videoHandler.TogglePublishStatus)
	}

	// Create HTTP server
	a.httpServer = &http.Server{
		Addr:    ":" + a.cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		a.log.Info("Video service starting on port %s (store: %s)", a.cfg.ServerPort, a.cfg.VideoStore)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	return nil
}

func (a *App) videoRepository() (persistent.VideoRepository, error) {
	if a.mongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return persistent.NewMongoVideoRepository(ctx, a.mongoDB)
	}
	return persistent.NewVideoRepository(a.db), nil
}

func (a *App) Wait() {
	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	a.log.Info("Shutting down video service...")
}

func (a *App) Shutdown() error {
	// The context is used to inform the server it has 5 seconds to finish
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server
	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("Server forced to shutdown: %v", err)
		return err
	}

	// Close database connection
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.log.Error("Error closing database: %v", err)
			}
		}
	}
	if a.mongoDB != nil {
		if err := a.mongoDB.Client().Disconnect(ctx); err != nil {
			a.log.Error("Error closing MongoDB: %v", err)
		}
	}

	// Close Redis connection
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis: %v", err)
		}
	}

	// Close RabbitMQ connection
	if a.queueClient != nil {
		if err := a.queueClient.Close(); err != nil {
			a.log.Error("Error closing RabbitMQ: %v", err)
		}
	}

	a.log.Info("Video service exited")
	return nil
}
