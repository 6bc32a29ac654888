package main

import (
	"log"
	"net/http"

	_ "bugtrack/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"bugtrack/internal/auth"
	"bugtrack/internal/cache"
	"bugtrack/internal/config"
	"bugtrack/internal/db"
	"bugtrack/internal/handler"
	"bugtrack/internal/repository"
	"bugtrack/internal/router"
	"bugtrack/internal/service"
)

// @title Bug Tracker API
// @version 1.0
// @description Bug tracking API with user authentication and ownership-checked mutations.
// @host localhost:8080
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	if cfg.JWTSecret == "fallback-secret" {
		log.Println("WARNING: JWT_SECRET is not set, using the development fallback")
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	bugRepo := repository.NewBugRepository(gormDB)
	postRepo := repository.NewPostRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	gate := auth.NewGate(jwtService, userRepo)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService)
	bugService := service.NewBugService(bugRepo, cacheClient)
	postService := service.NewPostService(postRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	bugHandler := handler.NewBugHandler(bugService)
	postHandler := handler.NewPostHandler(postService)

	// Register routes
	router.Register(e, gate, authHandler, bugHandler, postHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
