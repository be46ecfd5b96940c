package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/AtSheen/efg/internal/config"
	"github.com/AtSheen/efg/internal/database"
	"github.com/AtSheen/efg/internal/handlers"
	"github.com/AtSheen/efg/internal/logger"
	"github.com/AtSheen/efg/internal/middleware"
	"github.com/AtSheen/efg/internal/predictor"
	"github.com/AtSheen/efg/internal/repository"
	"github.com/AtSheen/efg/internal/services"
	"github.com/AtSheen/efg/internal/storage"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	envErr := godotenv.Load()

	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting tax code prediction API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"source":      cfg.ReferenceData.Source,
	})
	if envErr != nil {
		log.Warn("No .env file loaded", map[string]interface{}{"reason": envErr.Error()})
	}

	ctx := context.Background()

	// The database is only needed when reference tables live in PostgreSQL
	var db *database.Database
	if cfg.ReferenceData.Source == config.SourcePostgres {
		db, err = database.NewPostgresPool(ctx, cfg.Database)
		if err != nil {
			log.Fatal("Failed to connect to database", err, map[string]interface{}{
				"host": cfg.Database.Host,
				"port": cfg.Database.Port,
				"name": cfg.Database.Name,
			})
		}
		defer db.Close()

		log.Info("Database connection established", map[string]interface{}{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Name,
			"pool_min": cfg.Database.PoolMin,
			"pool_max": cfg.Database.PoolMax,
		})
	}

	source, err := storage.NewSource(ctx, cfg, db)
	if err != nil {
		log.Fatal("Failed to create reference data source", err, map[string]interface{}{
			"source": cfg.ReferenceData.Source,
		})
	}

	store := repository.NewStore(source, cfg.ReferenceData.LoadTimeout, log)
	if cfg.ReferenceData.Eager {
		if _, err := store.Snapshot(ctx); err != nil {
			log.Fatal("Failed to load reference data", err, map[string]interface{}{
				"source": source.Name(),
			})
		}
	}

	// Initialize service layer
	client := predictor.NewClient(cfg.FunctionApp.BaseURL, cfg.FunctionApp.Key, cfg.Predictor.Timeout, log)
	taxCodeService := services.NewTaxCodeService(store, client, log)
	reportService := services.NewReportService(store, log)

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log, "/health"))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(store, db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Initialize handlers
	taxCodeHandler := handlers.NewTaxCodeHandler(taxCodeService)
	reportHandler := handlers.NewReportHandler(reportService)

	// Register prediction and report routes
	router.POST("/get_tax_code_prediction", taxCodeHandler.Predict)
	router.GET("/get_attention_list_table", reportHandler.AttentionList)
	router.GET("/get_vat_ip_table", reportHandler.VATIPIssues)
	router.GET("/get_historical_meta_table", reportHandler.HistoricalMeta)
	router.NoRoute(handlers.NoRoute)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
