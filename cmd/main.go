package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configs "github.com/altairhq/usermanagement/config"
	"github.com/altairhq/usermanagement/internal/handler"
	"github.com/altairhq/usermanagement/internal/identity"
	"github.com/altairhq/usermanagement/internal/imagestore"
	"github.com/altairhq/usermanagement/internal/middleware"
	"github.com/altairhq/usermanagement/internal/repository"
	"github.com/altairhq/usermanagement/internal/router"
	"github.com/altairhq/usermanagement/internal/service"
	"github.com/altairhq/usermanagement/pkg/database"
	"github.com/altairhq/usermanagement/pkg/logger"
	"github.com/altairhq/usermanagement/pkg/redis"
	"go.uber.org/zap"
)

func main() {
	config, err := configs.LoadConfig()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.InitLogger(config); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	if err := config.Validate(); err != nil {
		logger.GetLogger().Fatal("Invalid configuration", zap.Error(err))
	}

	logger.GetLogger().Info("Application starting",
		zap.String("app_name", config.App.Name),
		zap.String("environment", config.App.Environment),
	)

	db, err := database.NewPostgresDB(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.CloseDB(db)

	if err := database.Migrate(db); err != nil {
		logger.GetLogger().Fatal("Failed to run database migrations", zap.Error(err))
	}
	logger.GetLogger().Info("Database migrated successfully")

	if err := database.Seed(db); err != nil {
		logger.GetLogger().Fatal("Failed to seed roles and admin account", zap.Error(err))
	}
	logger.GetLogger().Info("Roles and admin account ensured")

	redisClient, err := redis.NewClient(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	images, err := imagestore.NewS3Store(config)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize image store", zap.Error(err))
	}

	// Stores and repositories
	identityStore := identity.NewStore(db)
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	// Services
	jwtService, err := service.NewJWTService(config.JWT.Secret, config.JWT.Issuer)
	if err != nil {
		logger.GetLogger().Fatal("Failed to initialize JWT service", zap.Error(err))
	}
	userCache := service.NewRedisUserCache(redisClient, 5*time.Minute)
	userService := service.NewUserService(
		identityStore,
		userRepo,
		profileRepo,
		images,
		jwtService,
		userCache,
		config.JWT.ExpireInMinutes,
	)

	// Handlers and middleware
	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(userService)
	healthHandler := handler.NewHealthHandler(db, redisClient)
	jwtMiddleware := middleware.NewJWTMiddleware(jwtService)

	engine := router.NewRouter(
		userHandler,
		authHandler,
		healthHandler,
		jwtMiddleware,
		config,
	).SetupRoutes()

	server := &http.Server{
		Addr:    ":" + config.App.Port,
		Handler: engine,
	}

	go func() {
		logger.GetLogger().Info("Server starting",
			zap.String("port", config.App.Port),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.GetLogger().Fatal("Failed to start server",
				zap.Error(err),
				zap.String("port", config.App.Port),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.GetLogger().Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.GetLogger().Error("Forced shutdown", zap.Error(err))
	}

	logger.GetLogger().Info("Server stopped")
}
