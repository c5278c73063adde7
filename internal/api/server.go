package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"fulqrun-crm/internal/analytics"
	"fulqrun-crm/internal/api/handlers"
	"fulqrun-crm/internal/api/middleware"
	"fulqrun-crm/internal/api/websocket"
	"fulqrun-crm/internal/cache"
	"fulqrun-crm/internal/config"
	"fulqrun-crm/internal/insight"
	"fulqrun-crm/internal/notification"
	"fulqrun-crm/internal/pipeline"
	"fulqrun-crm/internal/repository"

	"github.com/gorilla/mux"
)

// Server представляє HTTP сервер для CRM API
type Server struct {
	config     *config.Config
	httpServer *http.Server
	router     *mux.Router

	// Middleware
	rateLimiter *middleware.RateLimiter

	// Handlers
	healthHandler      *handlers.HealthHandler
	opportunityHandler *handlers.OpportunityHandler
	pipelineHandler    *handlers.PipelineHandler
	portfolioHandler   *handlers.PortfolioHandler
	wsHandler          *websocket.Handler
}

// ServerDeps залежності сервера, зібрані в main
type ServerDeps struct {
	OppRepo       repository.OpportunityRepository
	SnapRepo      repository.SnapshotRepository
	Adapter       *pipeline.Adapter
	Engine        *pipeline.StageEngine
	Health        *pipeline.HealthAnalyzer
	Portfolio     *pipeline.PortfolioAnalyzer
	AnalysisCache *cache.AnalysisCache
	InsightClient *insight.Client
	Notifications *notification.Service
	Analytics     *analytics.Service
	Scheduler     *analytics.Scheduler
	Hub           *websocket.Hub
}

// NewServer створює новий CRM API server
func NewServer(cfg *config.Config, deps ServerDeps) *Server {
	s := &Server{
		config: cfg,
	}

	// Initialize Rate Limiter
	s.rateLimiter = middleware.NewRateLimiter(cfg.Server.RateLimit)

	// Initialize handlers
	s.healthHandler = handlers.NewHealthHandler()
	s.opportunityHandler = handlers.NewOpportunityHandler(deps.OppRepo, deps.AnalysisCache)
	s.pipelineHandler = handlers.NewPipelineHandler(
		deps.OppRepo,
		deps.Adapter,
		deps.Engine,
		deps.Health,
		deps.AnalysisCache,
		deps.InsightClient,
		deps.Hub,
		deps.Notifications,
		nil,
	)
	s.portfolioHandler = handlers.NewPortfolioHandler(
		deps.OppRepo,
		deps.Adapter,
		deps.Portfolio,
		deps.AnalysisCache,
		deps.Analytics,
		deps.Scheduler,
	)
	s.wsHandler = websocket.NewHandler(deps.Hub)

	// Setup router
	s.setupRouter()

	return s
}

// setupRouter налаштовує всі роути та middleware
func (s *Server) setupRouter() {
	r := mux.NewRouter()

	// Global middleware
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.CORSMiddleware(s.config.Server.AllowedOrigins))
	r.Use(s.rateLimiter.RateLimitMiddleware)

	// WebSocket stream (поза /api/v1, без rate limit headers від CORS)
	r.HandleFunc("/ws", s.wsHandler.ServeEvents)

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", s.healthHandler.Health).Methods("GET")
	api.HandleFunc("/ping", s.healthHandler.Ping).Methods("GET")

	// Opportunities CRUD
	api.HandleFunc("/opportunities", s.opportunityHandler.ListOpportunities).Methods("GET")
	api.HandleFunc("/opportunities", s.opportunityHandler.CreateOpportunity).Methods("POST")
	api.HandleFunc("/opportunities/{id}", s.opportunityHandler.GetOpportunity).Methods("GET")
	api.HandleFunc("/opportunities/{id}", s.opportunityHandler.UpdateOpportunity).Methods("PUT")
	api.HandleFunc("/opportunities/{id}", s.opportunityHandler.DeleteOpportunity).Methods("DELETE")

	// Qualification, contacts, activity log
	api.HandleFunc("/opportunities/{id}/meddpicc", s.opportunityHandler.UpdateMEDDPICC).Methods("PUT")
	api.HandleFunc("/opportunities/{id}/contacts", s.opportunityHandler.AddContact).Methods("POST")
	api.HandleFunc("/opportunities/{id}/activities", s.opportunityHandler.AddActivity).Methods("POST")

	// Stage progression & analytics
	api.HandleFunc("/opportunities/{id}/progression", s.pipelineHandler.GetProgression).Methods("GET")
	api.HandleFunc("/opportunities/{id}/advance", s.pipelineHandler.AdvanceStage).Methods("POST")
	api.HandleFunc("/opportunities/{id}/analytics", s.pipelineHandler.GetAnalytics).Methods("GET")
	api.HandleFunc("/opportunities/{id}/insights", s.pipelineHandler.GetInsight).Methods("GET")

	// Portfolio
	api.HandleFunc("/portfolio/summary", s.portfolioHandler.GetSummary).Methods("GET")
	api.HandleFunc("/portfolio/snapshots", s.portfolioHandler.GetSnapshots).Methods("GET")
	api.HandleFunc("/portfolio/snapshots/latest", s.portfolioHandler.GetLatestSnapshot).Methods("GET")
	api.HandleFunc("/portfolio/sweep", s.portfolioHandler.TriggerSweep).Methods("POST")

	s.router = r
}

// Start запускає HTTP сервер
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("🚀 CRM API server starting on %s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Stop зупиняє HTTP сервер gracefully
func (s *Server) Stop(ctx context.Context) error {
	log.Println("🛑 Shutting down CRM API server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("✅ CRM API server stopped")
	return nil
}

// Router повертає router для тестування
func (s *Server) Router() *mux.Router {
	return s.router
}
