package pipeline

import (
	"testing"
	"time"

	"fulqrun-crm/internal/models"
)

func TestToSnapshotTimeFields(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	adapter := NewAdapter(FixedClock(now))

	lastActivity := now.AddDate(0, 0, -6)
	opp := &models.Opportunity{
		BaseModel:      models.BaseModel{ID: 7, CreatedAt: now.AddDate(0, 0, -90)},
		ExternalID:     "ext-7",
		Name:           "Globex renewal",
		Value:          80_000,
		Probability:    40,
		Stage:          models.StageEngage,
		StageEnteredAt: now.AddDate(0, 0, -12),
		LastActivityAt: &lastActivity,
	}

	snap := adapter.ToSnapshot(opp)

	if snap.DaysInStage != 12 {
		t.Errorf("expected 12 days in stage, got %d", snap.DaysInStage)
	}
	if snap.DaysInPipeline != 90 {
		t.Errorf("expected 90 days in pipeline, got %d", snap.DaysInPipeline)
	}
	if snap.DaysSinceActivity != 6 {
		t.Errorf("expected 6 days since activity, got %d", snap.DaysSinceActivity)
	}
}

func TestToSnapshotDefaults(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	adapter := NewAdapter(FixedClock(now))

	// Мінімальна угода: без MEDDPICC, контактів, активностей, дат
	opp := &models.Opportunity{
		BaseModel: models.BaseModel{ID: 1, CreatedAt: now},
		Name:      "Bare deal",
		Stage:     models.StageProspect,
	}

	snap := adapter.ToSnapshot(opp)

	if snap.DaysSinceActivity != -1 {
		t.Errorf("expected -1 for missing activity, got %d", snap.DaysSinceActivity)
	}
	if snap.MEDDPICC == nil || len(snap.MEDDPICC) != 0 {
		t.Errorf("expected empty non-nil MEDDPICC map, got %v", snap.MEDDPICC)
	}
	if snap.HasDecisionMaker || snap.SolutionPresented || snap.ProposalSubmitted {
		t.Error("derived facts must default to false")
	}
	if snap.ExpectedCloseDate != nil {
		t.Error("missing close date must stay nil")
	}
}

func TestToSnapshotClamping(t *testing.T) {
	adapter := NewAdapter(FixedClock(time.Now()))

	opp := &models.Opportunity{
		BaseModel:   models.BaseModel{CreatedAt: time.Now().Add(time.Hour)}, // created "in the future"
		Value:       -500,
		Probability: 140,
		Stage:       models.StageProspect,
	}

	snap := adapter.ToSnapshot(opp)

	if snap.Value != 0 {
		t.Errorf("negative value must clamp to 0, got %f", snap.Value)
	}
	if snap.Probability != 100 {
		t.Errorf("probability must clamp to 100, got %d", snap.Probability)
	}
	if snap.DaysInPipeline != 0 {
		t.Errorf("future created_at must clamp days to 0, got %d", snap.DaysInPipeline)
	}
}

func TestToSnapshotMEDDPICCRescale(t *testing.T) {
	adapter := NewAdapter(FixedClock(time.Now()))

	opp := &models.Opportunity{
		Stage: models.StageProspect,
		MEDDPICC: &models.MEDDPICC{
			IdentifyPain:  8,
			EconomicBuyer: 6,
			// решта нулі - "не оцінені", у map не потрапляють
		},
	}

	snap := adapter.ToSnapshot(opp)

	if got := snap.MEDDPICC[models.CriterionIdentifyPain]; got != 80 {
		t.Errorf("expected pain rescaled to 80, got %d", got)
	}
	if got := snap.MEDDPICC[models.CriterionEconomicBuyer]; got != 60 {
		t.Errorf("expected economic buyer rescaled to 60, got %d", got)
	}
	if len(snap.MEDDPICC) != 2 {
		t.Errorf("unassessed criteria must be excluded, got %v", snap.MEDDPICC)
	}
	if snap.MEDDPICCScore != 70 {
		t.Errorf("expected aggregate 70, got %d", snap.MEDDPICCScore)
	}
}

func TestToSnapshotDerivedFacts(t *testing.T) {
	adapter := NewAdapter(FixedClock(time.Now()))

	opp := &models.Opportunity{
		Stage: models.StageKeep,
		Contacts: []models.Contact{
			{Name: "Alex", IsDecisionMaker: false},
			{Name: "Sam", IsDecisionMaker: true},
		},
		Activities: []models.Activity{
			{Type: models.ActivityTypeProposal},
			{Type: models.ActivityTypePaymentTerms},
			{Type: models.ActivityTypeImplementation},
		},
	}

	snap := adapter.ToSnapshot(opp)

	if !snap.HasDecisionMaker {
		t.Error("decision maker contact not detected")
	}
	if !snap.SolutionPresented || !snap.ProposalSubmitted {
		t.Error("proposal activity must imply solution presented and proposal submitted")
	}
	if !snap.PaymentTermsAgreed || !snap.ImplementationPlanned {
		t.Error("payment terms / implementation activities not detected")
	}
}
