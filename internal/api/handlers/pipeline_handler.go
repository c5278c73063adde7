package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fulqrun-crm/internal/api/websocket"
	"fulqrun-crm/internal/cache"
	"fulqrun-crm/internal/insight"
	"fulqrun-crm/internal/models"
	"fulqrun-crm/internal/notification"
	"fulqrun-crm/internal/pipeline"
	"fulqrun-crm/internal/repository"
)

// PipelineHandler обробляє запити прогресії та аналітики угод
type PipelineHandler struct {
	oppRepo       repository.OpportunityRepository
	adapter       *pipeline.Adapter
	engine        *pipeline.StageEngine
	health        *pipeline.HealthAnalyzer
	analysisCache *cache.AnalysisCache
	insightClient *insight.Client
	hub           *websocket.Hub
	notifications *notification.Service
	clock         pipeline.Clock
}

// NewPipelineHandler створює новий PipelineHandler
func NewPipelineHandler(
	oppRepo repository.OpportunityRepository,
	adapter *pipeline.Adapter,
	engine *pipeline.StageEngine,
	health *pipeline.HealthAnalyzer,
	analysisCache *cache.AnalysisCache,
	insightClient *insight.Client,
	hub *websocket.Hub,
	notifications *notification.Service,
	clock pipeline.Clock,
) *PipelineHandler {
	if clock == nil {
		clock = pipeline.SystemClock()
	}
	return &PipelineHandler{
		oppRepo:       oppRepo,
		adapter:       adapter,
		engine:        engine,
		health:        health,
		analysisCache: analysisCache,
		insightClient: insightClient,
		hub:           hub,
		notifications: notifications,
		clock:         clock,
	}
}

// GetProgression оцінює stage gates угоди. Опціональний ?stage= дозволяє
// what-if оцінку проти іншої стадії без зміни угоди.
func (h *PipelineHandler) GetProgression(w http.ResponseWriter, r *http.Request) {
	opp, ok := h.loadOpportunity(w, r)
	if !ok {
		return
	}

	stage := r.URL.Query().Get("stage")
	if stage == "" {
		stage = opp.Stage
	}

	snap := h.adapter.ToSnapshot(opp)
	evaluation := h.engine.EvaluateStage(snap, stage)
	autoAdvance := h.engine.CanAutoAdvance(snap)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"opportunity_id": opp.ID,
		"progression":    evaluation,
		"auto_advance":   autoAdvance,
	})
}

// AdvanceStage просуває угоду на наступну стадію. Без force просування
// дозволене тільки коли движок каже can_advance; force - ручний override
// менеджера (у т.ч. перехід у closed_lost).
func (h *PipelineHandler) AdvanceStage(w http.ResponseWriter, r *http.Request) {
	opp, ok := h.loadOpportunity(w, r)
	if !ok {
		return
	}

	var req struct {
		TargetStage string `json:"target_stage"`
		Force       bool   `json:"force"`
	}
	if r.Body != nil && r.Body != http.NoBody {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if opp.IsClosed() {
		respondError(w, http.StatusConflict, "Opportunity is already closed")
		return
	}

	snap := h.adapter.ToSnapshot(opp)
	evaluation := h.engine.EvaluateStage(snap, opp.Stage)

	target := req.TargetStage
	if target == "" {
		target = evaluation.NextStage
	}

	if !models.IsValidStage(target) {
		respondError(w, http.StatusBadRequest, "Unknown target stage")
		return
	}

	if !req.Force {
		if target != evaluation.NextStage {
			respondError(w, http.StatusConflict,
				"Target stage is not the next stage; use force for manual override")
			return
		}
		if !evaluation.CanAdvance {
			respondJSON(w, http.StatusConflict, map[string]interface{}{
				"error":       "Stage gates not satisfied",
				"progression": evaluation,
			})
			return
		}
	}

	enteredAt := h.clock.Now()
	if err := h.oppRepo.AdvanceStage(opp.ID, target, enteredAt); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to advance stage")
		return
	}

	h.analysisCache.InvalidateDeal(r.Context(), opp.ID)
	h.notifications.ResetDeal(opp.ID)

	event := map[string]interface{}{
		"opportunity_id": opp.ID,
		"from_stage":     opp.Stage,
		"to_stage":       target,
		"forced":         req.Force,
		"advanced_at":    enteredAt.UTC().Format(time.RFC3339),
	}
	h.hub.BroadcastDealAdvanced(event)

	respondJSON(w, http.StatusOK, event)
}

// GetAnalytics повертає health-аналіз угоди (з кешу якщо свіжий)
func (h *PipelineHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDVar(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid opportunity ID")
		return
	}

	if cached, hit := h.analysisCache.GetDealAnalytics(r.Context(), id); hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	opp, err := h.oppRepo.GetByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch opportunity")
		return
	}
	if opp == nil {
		respondError(w, http.StatusNotFound, "Opportunity not found")
		return
	}

	snap := h.adapter.ToSnapshot(opp)
	analysis := h.health.AnalyzeDeal(snap)

	h.analysisCache.SetDealAnalytics(r.Context(), id, &analysis)
	h.hub.BroadcastDealAnalyzed(map[string]interface{}{
		"opportunity_id": opp.ID,
		"deal_health":    analysis.DealHealth,
		"score":          analysis.Score,
	})

	respondJSON(w, http.StatusOK, analysis)
}

// GetInsight повертає підказку зовнішнього AI-сервісу. Вимкнений сервіс -
// не помилка: клієнт отримує локальний аналіз і без підказки.
func (h *PipelineHandler) GetInsight(w http.ResponseWriter, r *http.Request) {
	opp, ok := h.loadOpportunity(w, r)
	if !ok {
		return
	}

	snap := h.adapter.ToSnapshot(opp)

	result, err := h.insightClient.GetDealInsight(r.Context(), snap)
	if err != nil {
		if errors.Is(err, insight.ErrDisabled) {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"available": false,
				"reason":    "insight service is disabled",
			})
			return
		}
		respondError(w, http.StatusBadGateway, "Insight service unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"available": true,
		"insight":   result,
	})
}

func (h *PipelineHandler) loadOpportunity(w http.ResponseWriter, r *http.Request) (*models.Opportunity, bool) {
	id, ok := parseIDVar(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid opportunity ID")
		return nil, false
	}

	opp, err := h.oppRepo.GetByID(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch opportunity")
		return nil, false
	}
	if opp == nil {
		respondError(w, http.StatusNotFound, "Opportunity not found")
		return nil, false
	}
	return opp, true
}
