package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fulqrun-crm/internal/analytics"
	"fulqrun-crm/internal/api"
	"fulqrun-crm/internal/api/websocket"
	"fulqrun-crm/internal/cache"
	"fulqrun-crm/internal/config"
	"fulqrun-crm/internal/insight"
	"fulqrun-crm/internal/logger"
	"fulqrun-crm/internal/models"
	"fulqrun-crm/internal/notification"
	"fulqrun-crm/internal/pipeline"
	"fulqrun-crm/internal/repository"
	"fulqrun-crm/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("🚀 Starting FulQrun CRM API %s...", version.Version)
	log.Printf("Environment: %s", cfg.App.Environment)
	log.Println(cfg.SafeString())

	appLog := logger.New(cfg.App.LogLevel)

	// Database connection
	db, err := repository.InitDatabase(cfg.Database, cfg.App)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repository.CloseDatabase(db)
	log.Println("✅ Database connected")

	if err := repository.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate tables: %v", err)
	}
	log.Println("✅ Tables migrated")

	// Initialize repositories
	oppRepo := repository.NewOpportunityRepository(db)
	snapRepo := repository.NewSnapshotRepository(db)

	// Initialize Redis (optional: без нього аналітика рахується напряму)
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		if cfg.App.Environment == "production" {
			log.Fatalf("❌ Failed to connect to Redis (required in production): %v", err)
		}
		log.Printf("⚠️  Redis not available - analysis caching disabled: %v", err)
	}
	if redisClient != nil {
		defer cache.CloseRedisClient(redisClient)
		log.Println("✅ Redis connected")
	}
	analysisCache := cache.NewAnalysisCache(redisClient,
		time.Duration(cfg.Pipeline.CacheTTL)*time.Second)

	// Pipeline engines
	adapter := pipeline.NewAdapter(nil)
	catalog := pipeline.DefaultCatalog()
	engine := pipeline.NewStageEngine(catalog)
	health := pipeline.NewHealthAnalyzer()
	portfolio := pipeline.NewPortfolioAnalyzer(health)

	// External insight service
	insightClient := insight.NewClient(cfg.Insight, appLog)
	if cfg.Insight.Enabled {
		log.Println("✅ Insight service enabled")
	} else {
		log.Println("⚠️  Insight service disabled - analytics are local only")
	}

	// Telegram notifications
	notifications, err := notification.NewService(cfg.Telegram)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram notifications: %v", err)
	}

	// WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Analytics service + nightly sweep
	analyticsService := analytics.NewService(oppRepo, snapRepo, adapter, notifications)
	analyticsService.OnSweep(func(snapshot *models.PipelineSnapshot) {
		hub.BroadcastSweepCompleted(snapshot)
	})

	scheduler := analytics.NewScheduler(analyticsService, cfg.Pipeline.SweepSchedule)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start sweep scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Create API server
	server := api.NewServer(cfg, api.ServerDeps{
		OppRepo:       oppRepo,
		SnapRepo:      snapRepo,
		Adapter:       adapter,
		Engine:        engine,
		Health:        health,
		Portfolio:     portfolio,
		AnalysisCache: analysisCache,
		InsightClient: insightClient,
		Notifications: notifications,
		Analytics:     analyticsService,
		Scheduler:     scheduler,
		Hub:           hub,
	})

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Println("✅ CRM API server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down CRM API...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ CRM API stopped gracefully")
}
