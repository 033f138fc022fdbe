package main

import (
	"finsight/pkg/config"
	app "finsight/services/auth/internal/app"

	"github.com/gin-gonic/gin"
)

// @title           Auth Service API
// @version         1.0
// @description     Sign-in, sign-out and session lookup for finsight admin writers

// @host      localhost:8001
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Validate JWT_SECRET for services that use JWT
	if cfg.HasDefaultSecret() {
		panic("JWT_SECRET must be set in environment variables")
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	if err := application.Run(); err != nil {
		panic(err)
	}

	application.Wait()

	if err := application.Shutdown(); err != nil {
		panic(err)
	}
}
