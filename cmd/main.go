package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atlas-tracker/db"
	"atlas-tracker/internal/auth"
	"atlas-tracker/internal/campaign"
	"atlas-tracker/internal/config"
	"atlas-tracker/internal/export"
	"atlas-tracker/internal/fetch"
	"atlas-tracker/internal/planner"
	"atlas-tracker/internal/preferences"
	"atlas-tracker/internal/status"
	"atlas-tracker/internal/web"
	"atlas-tracker/middleware"
)

// Loggers for the two output streams
var (
	infoLogger  = log.New(os.Stdout, "", log.LstdFlags)
	errorLogger = log.New(os.Stderr, "", log.LstdFlags)
)

func main() {
	infoLogger.Printf("Starting atlas-tracker - Process ID: %d", os.Getpid())

	cfg, err := config.LoadConfig(context.Background())
	if err != nil {
		errorLogger.Fatalf("Failed to load configuration: %v", err)
	}

	sqliteDB, err := db.ConnectToSQLite(cfg.SQLitePath)
	if err != nil {
		errorLogger.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer sqliteDB.Close()

	if err := db.InitializeSchema(sqliteDB); err != nil {
		errorLogger.Fatalf("Failed to initialize database schema: %v", err)
	}

	repoFactory := db.NewRepositoryFactory(sqliteDB, cfg.DatabaseName)
	locationRepo := repoFactory.NewLocationRepository()
	statusRepo := repoFactory.NewStatusRepository()
	campaignRepo := repoFactory.NewCampaignRepository()
	prefsRepo := repoFactory.NewPreferencesRepository()

	// Single writer for sqlite
	dbManager := db.NewDBManager()
	defer dbManager.Stop()

	apiClient := fetch.NewClient(cfg.APIBaseURL, cfg.MapID)

	statusService := status.NewStatusService(statusRepo, dbManager)
	campaignService := campaign.NewCampaignService(campaignRepo, apiClient, dbManager)
	prefsService := preferences.NewPreferencesService(prefsRepo, dbManager)
	plannerService := planner.NewPlannerService(locationRepo, statusService, campaignService, prefsService, apiClient, dbManager)
	exportService := export.NewExportService(locationRepo, statusRepo, campaignRepo, repoFactory.NewImportRepository(), dbManager)

	// First run: fetch the base set in the background so the map has data
	// without a manual refresh.
	go seedLocations(plannerService, locationRepo)

	authHandlers := auth.NewAuthHandlers(cfg)
	mw := middleware.NewMiddleware(cfg)
	webHandler := web.NewWebHandler(plannerService, statusService, campaignService, prefsService, exportService, cfg)
	router := webHandler.SetupRoutes(authHandlers, mw)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: middleware.LoggingMiddleware(router),
	}

	go func() {
		infoLogger.Printf("Server is starting on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errorLogger.Fatalf("Server ListenAndServe error: %v", err)
		}
	}()

	waitForShutdown(server)
}

func seedLocations(plannerService *planner.PlannerService, locationRepo db.LocationRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	existing, err := locationRepo.FindAll(ctx)
	if err != nil {
		errorLogger.Printf("Failed to check existing locations: %v", err)
		return
	}
	if len(existing) > 0 {
		infoLogger.Printf("Base location set present (%d locations)", len(existing))
		return
	}

	infoLogger.Println("No base locations stored, fetching from marker API...")
	count, err := plannerService.RefreshLocations(ctx)
	if err != nil {
		errorLogger.Printf("Initial location fetch failed: %v", err)
		return
	}
	infoLogger.Printf("Fetched %d base locations", count)
}

func waitForShutdown(server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	sig := <-stop
	infoLogger.Printf("Received shutdown signal: %v", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	infoLogger.Println("Shutting down the server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		errorLogger.Printf("Server Shutdown error: %v", err)
		os.Exit(1)
	}
	infoLogger.Println("Server stopped")
}
