package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	apiconfig "statement_forecast/pkg/api/config"
	apiforecast "statement_forecast/pkg/api/forecast"
	"statement_forecast/pkg/core/config"
	"statement_forecast/pkg/core/store"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML or HJSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	repo, err := store.Open(context.Background(), cfg.Store.DatabaseURL, cfg.Store.InputDir, cfg.Store.OutputDir)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(apiforecast.ErrorHandler())

	settings := apiconfig.NewSettings(cfg.Forecast, cfg.Report)
	forecastHandler := apiforecast.NewHandler(repo, settings, cfg.API.SaveOnDemand)
	configHandler := apiconfig.NewHandler(settings)

	router.GET("/health", apiforecast.Health)

	api := router.Group("/api/v1")
	forecastHandler.Register(api)
	configHandler.Register(api)

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.API.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(router)

	addr := fmt.Sprintf(":%d", cfg.API.Port)
	log.Printf("Starting API server on %s", addr)
	log.Printf("  - GET  /api/v1/companies")
	log.Printf("  - POST /api/v1/forecast")
	log.Printf("  - POST /api/v1/forecast/:ticker/run")
	log.Printf("  - GET  /api/v1/forecast/:ticker")
	log.Printf("  - GET  /api/v1/forecast/:ticker/report")
	log.Printf("  - GET  /api/v1/config")
	log.Printf("  - PUT  /api/v1/config/parameters")
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
