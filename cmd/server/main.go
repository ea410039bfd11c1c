package main

import (
	"net/http"

	"sportshop-be/internal/config"
	"sportshop-be/internal/db"
	"sportshop-be/internal/invoice"
	"sportshop-be/internal/logger"
	"sportshop-be/internal/mailer"
	"sportshop-be/internal/middleware"
	"sportshop-be/internal/order"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	dispatcher, err := mailer.NewSMTPMailer(cfg)
	if err != nil {
		logger.L().Fatal("mailer initialization failed", zap.Error(err))
	}

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, invoice.NewRenderer(), dispatcher)
	orderHandler := order.NewHandler(orderSvc)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestIDMiddleware())
	r.Use(logger.LoggingMiddleware())
	r.Use(middleware.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg.SecretKey))
	orders.Use(middleware.RateLimitMiddleware())
	orderHandler.Register(orders)

	logger.L().Info("server starting", zap.String("port", cfg.AppPort))
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
