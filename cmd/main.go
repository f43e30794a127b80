package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chris743/db-api/config"
	"github.com/chris743/db-api/db"
	"github.com/chris743/db-api/internal/auth/handler"
	repo "github.com/chris743/db-api/internal/auth/repository/postgres"
	"github.com/chris743/db-api/internal/auth/service"
	"github.com/chris743/db-api/internal/logger"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.Log.Level, cfg.Env)
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()

	if err := db.RunMigrations(ctx, cfg.DBURL); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	dbPool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	userRepo := repo.NewUserRepository(dbPool)
	sessionRepo := repo.NewSessionRepository(dbPool)
	auditRepo := repo.NewAuditLogRepository(dbPool)

	auditRecorder := service.NewAuditRecorder(auditRepo, log)
	tokenService := service.NewTokenService(cfg.JWT)
	passwordService := service.NewPasswordService(cfg.Bcrypt.WorkFactor)

	authService := service.NewAuthService(userRepo, sessionRepo, tokenService, passwordService, auditRecorder, cfg, log)
	userService := service.NewUserService(userRepo, sessionRepo, passwordService, auditRecorder, log)
	sessionService := service.NewSessionService(sessionRepo, auditRecorder, log)

	authHandler := handler.NewAuthHandler(authService, userService, sessionService)
	userHandler := handler.NewUserHandler(userService)
	authMiddleware := handler.NewAuthMiddleware(tokenService, sessionService, log)

	app := fiber.New()
	handler.RegisterRoutes(app, authHandler, userHandler, authMiddleware)

	log.Info("starting server", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
