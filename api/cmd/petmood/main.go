package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"pet-mood/api/internal/app"
	"pet-mood/api/internal/config"
	"pet-mood/api/internal/httpserver"
	"pet-mood/api/internal/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	log := logger.NewLogger(cfg.LogLevel)

	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8000"
	}
	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("startup failed")
	}
	defer a.Close()

	if err := httpserver.Run(ctx, ":"+cfg.Port, a.Handler(), log); err != nil {
		log.WithError(err).Fatal("server failed")
	}
	log.Info("server exited")
}
