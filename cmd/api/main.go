package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/consultahub/consulta-scheduler/internal/config"
	dbpkg "github.com/consultahub/consulta-scheduler/internal/db"
	"github.com/consultahub/consulta-scheduler/internal/logging"
	"github.com/consultahub/consulta-scheduler/internal/middleware"
	"github.com/consultahub/consulta-scheduler/internal/routes"
)

func main() {

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	db := dbpkg.NewDB(cfg, logger)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	sweeper := routes.RegisterRoutes(r, db, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Start(ctx)

	logger.Info().Str("addr", cfg.Addr()).Msg("server running")
	if err := r.Run(cfg.Addr()); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
