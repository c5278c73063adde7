package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fulqrun-crm/internal/cache"
	"fulqrun-crm/internal/models"
	"fulqrun-crm/internal/repository"
)

// OpportunityHandler обробляє CRUD запити по угодах
type OpportunityHandler struct {
	oppRepo       repository.OpportunityRepository
	analysisCache *cache.AnalysisCache
}

// NewOpportunityHandler створює новий OpportunityHandler
func NewOpportunityHandler(oppRepo repository.OpportunityRepository, analysisCache *cache.AnalysisCache) *OpportunityHandler {
	return &OpportunityHandler{
		oppRepo:       oppRepo,
		analysisCache: analysisCache,
	}
}

// ListOpportunities повертає список угод з фільтрами
func (h *OpportunityHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	limit := parseIntQuery(r, "limit", 20)
	if limit > 100 {
		limit = 100
	}

	filters := repository.OpportunityFilters{
		Stage:    r.URL.Query().Get("stage"),
		Account:  r.URL.Query().Get("account"),
		MinValue: float64(parseIntQuery(r, "min_value", 0)),
		Open:     r.URL.Query().Get("open") == "true",
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	if filters.Stage != "" && !models.IsValidStage(filters.Stage) {
		respondError(w, http.StatusBadRequest, "Unknown stage")
		return
	}

	opps, err := h.oppRepo.ListByFilters(filters)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch opportunities")
		return
	}

	total, _ := h.oppRepo.CountOpen()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"opportunities": opps,
		"pagination": map[string]interface{}{
			"page":       page,
			"limit":      limit,
			"total_open": total,
		},
	})
}

// GetOpportunity повертає конкретну угоду
func (h *OpportunityHandler) GetOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDVar(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid opportunity ID")
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

	respondJSON(w, http.StatusOK, opp)
}

// CreateOpportunity створює нову угоду
func (h *OpportunityHandler) CreateOpportunity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name              string     `json:"name"`
		Description       string     `json:"description"`
		Account           string     `json:"account"`
		Value             float64    `json:"value"`
		Probability       int        `json:"probability"`
		Stage             string     `json:"stage"`
		ExpectedCloseDate *time.Time `json:"expected_close_date"`
		Competitor        string     `json:"competitor"`
		OwnerChatID       int64      `json:"owner_chat_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if req.Stage != "" && !models.IsValidStage(req.Stage) {
		respondError(w, http.StatusBadRequest, "Unknown stage")
		return
	}

	if req.Value < 0 {
		respondError(w, http.StatusBadRequest, "Value must be non-negative")
		return
	}

	opp := &models.Opportunity{
		Name:              req.Name,
		Description:       req.Description,
		Account:           req.Account,
		Value:             req.Value,
		Probability:       req.Probability,
		Stage:             req.Stage,
		ExpectedCloseDate: req.ExpectedCloseDate,
		Competitor:        req.Competitor,
		OwnerChatID:       req.OwnerChatID,
	}

	if err := h.oppRepo.Create(opp); err != nil {
		if errors.Is(err, repository.ErrDuplicateOpportunity) {
			respondError(w, http.StatusConflict, "Opportunity already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to create opportunity")
		return
	}

	respondJSON(w, http.StatusCreated, opp)
}

// UpdateOpportunity оновлює поля угоди (стадія змінюється тільки через /advance)
func (h *OpportunityHandler) UpdateOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDVar(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid opportunity ID")
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

	var req struct {
		Name              *string    `json:"name"`
		Description       *string    `json:"description"`
		Account           *string    `json:"account"`
		Value             *float64   `json:"value"`
		Probability       *int       `json:"probability"`
		ExpectedCloseDate *time.Time `json:"expected_close_date"`
		Competitor        *string    `json:"competitor"`
		OwnerChatID       *int64     `json:"owner_chat_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name != nil {
		opp.Name = *req.Name
	}
	if req.Description != nil {
		opp.Description = *req.Description
	}
	if req.Account != nil {
		opp.Account = *req.Account
	}
	if req.Value != nil {
		if *req.Value < 0 {
			respondError(w, http.StatusBadRequest, "Value must be non-negative")
			return
		}
		opp.Value = *req.Value
	}
	if req.Probability != nil {
		opp.Probability = *req.Probability
	}
	if req.ExpectedCloseDate != nil {
		opp.ExpectedCloseDate = req.ExpectedCloseDate
	}
	if req.Competitor != nil {
		opp.Competitor = *req.Competitor
	}
	if req.OwnerChatID != nil {
		opp.OwnerChatID = *req.OwnerChatID
	}

	if err := h.oppRepo.Update(opp); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update opportunity")
		return
	}

	h.analysisCache.InvalidateDeal(r.Context(), opp.ID)

	respondJSON(w, http.StatusOK, opp)
}

// DeleteOpportunity видаляє угоду
func (h *OpportunityHandler) DeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDVar(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid opportunity ID")
		return
	}

	if err := h.oppRepo.Delete(id); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete opportunity")
		return
	}

	h.analysisCache.InvalidateDeal(r.Context(), id)

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UpdateMEDDPICC оновлює критерії кваліфікації. Агрегований score
// перераховується тут і ніколи не приймається від клієнта.
func (h *OpportunityHandler) UpdateMEDDPICC(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDVar(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid opportunity ID")
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

	var req struct {
		Criteria map[string]int    `json:"criteria"`
		Notes    map[string]string `json:"notes"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record := opp.MEDDPICC
	if record == nil {
		record = &models.MEDDPICC{OpportunityID: opp.ID}
	}

	for name, score := range req.Criteria {
		record.SetCriterion(name, score)
	}

	if len(req.Notes) > 0 {
		if record.Notes == nil {
			record.Notes = make(models.JSONMap)
		}
		for name, note := range req.Notes {
			record.Notes[name] = note
		}
	}

	record.Recalculate()

	if err := h.oppRepo.SaveMEDDPICC(record); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save qualification")
		return
	}

	h.analysisCache.InvalidateDeal(r.Context(), opp.ID)

	respondJSON(w, http.StatusOK, record)
}

// AddContact додає контакт до угоди
func (h *OpportunityHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDVar(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid opportunity ID")
		return
	}

	opp, err := h.oppRepo.GetByID(id)
	if err != nil || opp == nil {
		respondError(w, http.StatusNotFound, "Opportunity not found")
		return
	}

	var contact models.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if contact.Name == "" {
		respondError(w, http.StatusBadRequest, "Contact name is required")
		return
	}

	contact.ID = 0
	contact.OpportunityID = opp.ID

	if err := h.oppRepo.AddContact(&contact); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to add contact")
		return
	}

	h.analysisCache.InvalidateDeal(r.Context(), opp.ID)

	respondJSON(w, http.StatusCreated, contact)
}

// AddActivity логує активність по угоді
func (h *OpportunityHandler) AddActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDVar(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid opportunity ID")
		return
	}

	opp, err := h.oppRepo.GetByID(id)
	if err != nil || opp == nil {
		respondError(w, http.StatusNotFound, "Opportunity not found")
		return
	}

	var activity models.Activity
	if err := json.NewDecoder(r.Body).Decode(&activity); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !models.IsValidActivityType(activity.Type) {
		respondError(w, http.StatusBadRequest, "Unknown activity type")
		return
	}

	activity.ID = 0
	activity.OpportunityID = opp.ID
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = time.Now().UTC()
	}

	if err := h.oppRepo.AddActivity(&activity); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to add activity")
		return
	}

	h.analysisCache.InvalidateDeal(r.Context(), opp.ID)

	respondJSON(w, http.StatusCreated, activity)
}
