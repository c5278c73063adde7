package handlers

import (
	"net/http"

	"fulqrun-crm/internal/analytics"
	"fulqrun-crm/internal/cache"
	"fulqrun-crm/internal/pipeline"
	"fulqrun-crm/internal/repository"
)

// PortfolioHandler обробляє агреговані запити по всьому pipeline
type PortfolioHandler struct {
	oppRepo       repository.OpportunityRepository
	adapter       *pipeline.Adapter
	portfolio     *pipeline.PortfolioAnalyzer
	analysisCache *cache.AnalysisCache
	service       *analytics.Service
	scheduler     *analytics.Scheduler
}

// NewPortfolioHandler створює новий PortfolioHandler
func NewPortfolioHandler(
	oppRepo repository.OpportunityRepository,
	adapter *pipeline.Adapter,
	portfolio *pipeline.PortfolioAnalyzer,
	analysisCache *cache.AnalysisCache,
	service *analytics.Service,
	scheduler *analytics.Scheduler,
) *PortfolioHandler {
	return &PortfolioHandler{
		oppRepo:       oppRepo,
		adapter:       adapter,
		portfolio:     portfolio,
		analysisCache: analysisCache,
		service:       service,
		scheduler:     scheduler,
	}
}

// GetSummary повертає поточний агрегат по відкритих угодах
func (h *PortfolioHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if cached, hit := h.analysisCache.GetPortfolioSummary(r.Context()); hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	opps, err := h.oppRepo.ListOpen(10000, 0)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch opportunities")
		return
	}

	snaps := h.adapter.Snapshots(opps)
	summary := h.portfolio.AnalyzePortfolio(snaps)

	h.analysisCache.SetPortfolioSummary(r.Context(), &summary)

	respondJSON(w, http.StatusOK, summary)
}

// GetSnapshots повертає історію щоденних зрізів pipeline
func (h *PortfolioHandler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	days := parseIntQuery(r, "days", 30)
	if days < 1 {
		days = 1
	}
	if days > 365 {
		days = 365
	}

	snapshots, err := h.service.GetSnapshotHistory(days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch snapshots")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"days":      days,
		"snapshots": snapshots,
	})
}

// GetLatestSnapshot повертає останній збережений зріз
func (h *PortfolioHandler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.GetLatestSnapshot()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch snapshot")
		return
	}
	if snapshot == nil {
		respondError(w, http.StatusNotFound, "No snapshots recorded yet")
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// TriggerSweep запускає sweep поза розкладом (адмінський ручний запуск)
func (h *PortfolioHandler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduler.RunNow(); err != nil {
		respondError(w, http.StatusInternalServerError, "Sweep failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "completed"})
}
