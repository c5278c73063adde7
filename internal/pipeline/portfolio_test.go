package pipeline

import (
	"testing"

	"fulqrun-crm/internal/models"
)

func TestAnalyzePortfolioEmpty(t *testing.T) {
	analyzer := NewPortfolioAnalyzer(nil)

	summary := analyzer.AnalyzePortfolio(nil)

	if summary.TotalOpportunities != 0 {
		t.Errorf("expected 0 opportunities, got %d", summary.TotalOpportunities)
	}
	if summary.AverageValue != 0 {
		t.Errorf("empty portfolio must have average 0, got %f", summary.AverageValue)
	}
	if summary.ByStage == nil || summary.ByHealth == nil {
		t.Error("distribution maps must be non-nil even for empty input")
	}
}

func TestAnalyzePortfolioFold(t *testing.T) {
	analyzer := NewPortfolioAnalyzer(nil)

	snaps := []DealSnapshot{
		// healthy: без спрацювань
		{Stage: models.StageProspect, Value: 30_000, Probability: 20, DaysInStage: 5, DaysSinceActivity: -1},
		// critical: всі три штрафи (-45)
		{Stage: models.StageEngage, Value: 90_000, Probability: 50, DaysInStage: 45, DaysSinceActivity: 21,
			MEDDPICC: map[string]int{models.CriterionChampion: 30}},
		// at-risk: stagnation (-15) + слабка кваліфікація (-10) -> 75
		{Stage: models.StageEngage, Value: 60_000, Probability: 50, DaysInStage: 40, DaysSinceActivity: -1,
			MEDDPICC: map[string]int{models.CriterionIdentifyPain: 40}},
	}

	summary := analyzer.AnalyzePortfolio(snaps)

	if summary.TotalOpportunities != 3 {
		t.Fatalf("expected 3 opportunities, got %d", summary.TotalOpportunities)
	}
	if summary.TotalValue != 180_000 {
		t.Errorf("expected total value 180000, got %f", summary.TotalValue)
	}
	if summary.AverageValue != 60_000 {
		t.Errorf("expected average 60000, got %f", summary.AverageValue)
	}
	if summary.WeightedValue != 30_000*0.2+90_000*0.5+60_000*0.5 {
		t.Errorf("unexpected weighted value %f", summary.WeightedValue)
	}

	if summary.ByStage[models.StageEngage] != 2 || summary.ByStage[models.StageProspect] != 1 {
		t.Errorf("unexpected stage distribution %v", summary.ByStage)
	}
	if summary.ByHealth[models.HealthHealthy] != 1 ||
		summary.ByHealth[models.HealthAtRisk] != 1 ||
		summary.ByHealth[models.HealthCritical] != 1 {
		t.Errorf("unexpected health distribution %v", summary.ByHealth)
	}
	if summary.AtRiskCount != 2 {
		t.Errorf("expected 2 deals at risk, got %d", summary.AtRiskCount)
	}
}
