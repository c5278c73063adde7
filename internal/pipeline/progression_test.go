package pipeline

import (
	"testing"
	"time"

	"fulqrun-crm/internal/models"
)

func engageReadySnapshot() DealSnapshot {
	closeDate := time.Now().AddDate(0, 2, 0)
	return DealSnapshot{
		ID:          1,
		Name:        "Acme expansion",
		Value:       120_000,
		Stage:       models.StageEngage,
		Probability: 55,
		MEDDPICC: map[string]int{
			models.CriterionIdentifyPain:  80,
			models.CriterionEconomicBuyer: 70,
			models.CriterionChampion:      80,
		},
		ExpectedCloseDate: &closeDate,
		HasDecisionMaker:  true,
		SolutionPresented: true,
	}
}

func TestEvaluateStageAllGatesPassed(t *testing.T) {
	engine := NewStageEngine(nil)
	result := engine.EvaluateStage(engageReadySnapshot(), models.StageEngage)

	if !result.CanAdvance {
		t.Fatalf("expected canAdvance=true, gates: %v", result.GatesPassed)
	}
	if result.Confidence != 100 {
		t.Errorf("expected confidence 100, got %d", result.Confidence)
	}
	if result.NextStage != models.StageAcquire {
		t.Errorf("expected next stage %s, got %s", models.StageAcquire, result.NextStage)
	}
	if len(result.RequiredActions) != 0 {
		t.Errorf("expected no required actions, got %v", result.RequiredActions)
	}
}

func TestEvaluateStageANDSemantics(t *testing.T) {
	engine := NewStageEngine(nil)
	snap := engageReadySnapshot()
	snap.MEDDPICC[models.CriterionChampion] = 30 // champion gate fails

	result := engine.EvaluateStage(snap, models.StageEngage)

	if result.CanAdvance {
		t.Error("a single failed gate must block advancement")
	}

	// 2 з 3 gates пройдені -> round(66.67) = 67
	if result.Confidence != 67 {
		t.Errorf("expected confidence 67, got %d", result.Confidence)
	}

	if len(result.RequiredActions) != 1 {
		t.Fatalf("expected 1 required action, got %v", result.RequiredActions)
	}
	want := "Develop internal champion who will advocate for your solution"
	if result.RequiredActions[0] != want {
		t.Errorf("expected action %q, got %q", want, result.RequiredActions[0])
	}

	if result.GatesPassed["champion_established"] {
		t.Error("champion_established should be reported as failed")
	}
	if !result.GatesPassed["decision_maker_identified"] || !result.GatesPassed["solution_presented"] {
		t.Error("passing gates should be reported as passed")
	}
}

func TestEvaluateStageActionOrder(t *testing.T) {
	engine := NewStageEngine(nil)
	// Порожній snapshot: всі gates стадії prospect падають
	result := engine.EvaluateStage(DealSnapshot{Stage: models.StageProspect}, models.StageProspect)

	if result.Confidence != 0 {
		t.Errorf("expected confidence 0, got %d", result.Confidence)
	}

	// Дії у declared gate order
	want := []string{
		"Quantify the customer's pain and the cost of doing nothing",
		"Confirm budget availability with the economic buyer",
		"Agree an expected close date with the customer",
	}
	if len(result.RequiredActions) != len(want) {
		t.Fatalf("expected %d actions, got %v", len(want), result.RequiredActions)
	}
	for i, action := range want {
		if result.RequiredActions[i] != action {
			t.Errorf("action %d: expected %q, got %q", i, action, result.RequiredActions[i])
		}
	}
}

func TestEvaluateStageUnknownStage(t *testing.T) {
	engine := NewStageEngine(nil)
	result := engine.EvaluateStage(DealSnapshot{}, "bogus")

	if result.CanAdvance {
		t.Error("unknown stage must not be advanceable")
	}
	if result.Confidence != 0 {
		t.Errorf("expected confidence 0, got %d", result.Confidence)
	}
	if len(result.RequiredActions) != 1 || result.RequiredActions[0] != "Stage configuration not found" {
		t.Errorf("expected configuration-not-found action, got %v", result.RequiredActions)
	}
	if len(result.GatesPassed) != 0 {
		t.Errorf("expected empty gates map, got %v", result.GatesPassed)
	}
}

func TestEvaluateStageTerminal(t *testing.T) {
	engine := NewStageEngine(nil)
	result := engine.EvaluateStage(DealSnapshot{Stage: models.StageClosedWon}, models.StageClosedWon)

	if result.CanAdvance {
		t.Error("terminal stage must not be advanceable")
	}
	if result.Confidence != 0 {
		t.Errorf("terminal stage confidence must be 0, not NaN surrogate: got %d", result.Confidence)
	}
	if result.NextStage != "" {
		t.Errorf("terminal stage has no next stage, got %q", result.NextStage)
	}
}

func TestCanAutoAdvance(t *testing.T) {
	engine := NewStageEngine(nil)

	ready := engine.CanAutoAdvance(engageReadySnapshot())
	if !ready.CanAdvance {
		t.Errorf("expected auto-advance for fully gated deal, confidence %d", ready.Confidence)
	}
	if ready.NextStage != models.StageAcquire {
		t.Errorf("expected next stage %s, got %s", models.StageAcquire, ready.NextStage)
	}

	blocked := engageReadySnapshot()
	blocked.HasDecisionMaker = false
	if result := engine.CanAutoAdvance(blocked); result.CanAdvance {
		t.Error("failed gate must block auto-advance")
	}

	closed := DealSnapshot{Stage: models.StageClosedWon}
	if result := engine.CanAutoAdvance(closed); result.CanAdvance {
		t.Error("closed deal must never auto-advance")
	}
}
