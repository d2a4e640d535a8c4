package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"insights-dashboard/config"
	"insights-dashboard/handlers"
	"insights-dashboard/listener"
	"insights-dashboard/metrics"
	"insights-dashboard/middleware"
	"insights-dashboard/services"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using system environment variables")
	}

	cfg := config.Load()
	metrics.Register()

	databaseService, err := services.NewDatabaseService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database service: %v", err)
	}
	defer databaseService.Close()

	viewService := services.NewViewService(databaseService, cfg)

	websocketHub := services.NewWebSocketHub()
	go websocketHub.Start()
	defer websocketHub.Stop()

	var refreshListener *listener.Listener
	if cfg.AmqpURL != "" {
		refreshListener = listener.New(cfg.AmqpURL, cfg.AmqpExchange, cfg.AmqpQueue, viewService, websocketHub)
		refreshListener.Start()
		defer refreshListener.Stop()
	} else {
		log.Info("AMQP_URL not set, live report refresh disabled")
	}

	insightsHandler := handlers.NewInsightsHandler(viewService, cfg)
	websocketHandler := handlers.NewWebSocketHandler(websocketHub)

	r := gin.Default()

	// CORS middleware for Gin
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Public endpoints
	r.GET("/health", insightsHandler.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected routes
	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		protected.GET("/api/v3/reports", insightsHandler.ReportsHandler)
		protected.GET("/api/v3/analytics", insightsHandler.AnalyticsHandler)
		protected.GET("/api/v3/export", insightsHandler.ExportHandler)
		protected.GET("/ws/report-updates", websocketHandler.ListenReportUpdates)
		protected.GET("/ws/health", websocketHandler.HealthCheck)
	}

	srv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Infof("Starting Insights Dashboard service on %s:%s", cfg.Host, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
