package pipeline

import (
	"testing"

	"fulqrun-crm/internal/models"
)

func TestAnalyzeDealStagnationOnly(t *testing.T) {
	analyzer := NewHealthAnalyzer()

	// 45 днів у стадії, активності не було взагалі, MEDDPICC у середньому 75:
	// спрацьовує лише stagnation (-15) -> 85, healthy
	snap := DealSnapshot{
		Stage:             models.StageEngage,
		Value:             50_000,
		DaysInStage:       45,
		DaysSinceActivity: -1,
		MEDDPICC: map[string]int{
			models.CriterionIdentifyPain: 80,
			models.CriterionChampion:     70,
		},
	}

	result := analyzer.AnalyzeDeal(snap)

	if result.Score != 85 {
		t.Errorf("expected score 85, got %d", result.Score)
	}
	if result.DealHealth != models.HealthHealthy {
		t.Errorf("expected healthy, got %s", result.DealHealth)
	}
	if len(result.RiskFactors) != 1 {
		t.Errorf("expected exactly one risk factor, got %v", result.RiskFactors)
	}
	if result.ConfidenceLevel != result.Score {
		t.Errorf("confidence level must mirror score: %d != %d", result.ConfidenceLevel, result.Score)
	}
}

func TestAnalyzeDealCumulativePenalties(t *testing.T) {
	analyzer := NewHealthAnalyzer()

	// Stagnation (-15) + staleness (-20) + weak qualification (-10) -> 55, critical
	snap := DealSnapshot{
		Stage:             models.StageAcquire,
		Value:             50_000,
		DaysInStage:       45,
		DaysSinceActivity: 20,
		MEDDPICC: map[string]int{
			models.CriterionIdentifyPain:  40,
			models.CriterionEconomicBuyer: 40,
		},
	}

	result := analyzer.AnalyzeDeal(snap)

	if result.Score != 55 {
		t.Errorf("expected score 55, got %d", result.Score)
	}
	if result.DealHealth != models.HealthCritical {
		t.Errorf("expected critical, got %s", result.DealHealth)
	}
	if len(result.RiskFactors) != 3 {
		t.Errorf("expected 3 risk factors, got %v", result.RiskFactors)
	}
}

func TestAnalyzeDealEmptyQualification(t *testing.T) {
	analyzer := NewHealthAnalyzer()

	// Порожня MEDDPICC map: weakness-правило пропускається, без NaN
	snap := DealSnapshot{
		Stage:             models.StageProspect,
		Value:             50_000,
		DaysInStage:       5,
		DaysSinceActivity: -1,
		MEDDPICC:          map[string]int{},
	}

	result := analyzer.AnalyzeDeal(snap)

	if result.Score != 100 {
		t.Errorf("expected score 100, got %d", result.Score)
	}
	if result.DealHealth != models.HealthHealthy {
		t.Errorf("expected healthy, got %s", result.DealHealth)
	}
}

func TestAnalyzeDealValueAdvisories(t *testing.T) {
	analyzer := NewHealthAnalyzer()

	small := analyzer.AnalyzeDeal(DealSnapshot{Value: 5_000, DaysSinceActivity: -1})
	if small.Score != 100 {
		t.Errorf("value advisory must not penalize: got %d", small.Score)
	}
	if len(small.Recommendations) == 0 {
		t.Error("small deal should get an expansion recommendation")
	}

	large := analyzer.AnalyzeDeal(DealSnapshot{Value: 750_000, DaysSinceActivity: -1})
	if large.Score != 100 {
		t.Errorf("value advisory must not penalize: got %d", large.Score)
	}
	if len(large.Recommendations) == 0 {
		t.Error("large deal should get a stakeholder recommendation")
	}
}

func TestAnalyzeDealStagnationMonotonicity(t *testing.T) {
	analyzer := NewHealthAnalyzer()

	base := DealSnapshot{Value: 50_000, DaysSinceActivity: -1}
	previous := 101

	for _, days := range []int{10, 30, 31, 60, 365} {
		snap := base
		snap.DaysInStage = days
		score := analyzer.AnalyzeDeal(snap).Score
		if score > previous {
			t.Errorf("score increased from %d to %d when daysInStage grew to %d", previous, score, days)
		}
		previous = score
	}
}

func TestClassifyHealthBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, models.HealthHealthy},
		{80, models.HealthHealthy},
		{79, models.HealthAtRisk},
		{60, models.HealthAtRisk},
		{59, models.HealthCritical},
		{0, models.HealthCritical},
	}

	for _, tc := range cases {
		if got := classifyHealth(tc.score); got != tc.want {
			t.Errorf("classifyHealth(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestDeriveTrends(t *testing.T) {
	stuck := deriveTrends(DealSnapshot{DaysInStage: 40, DaysSinceActivity: 20, Competitor: "Rival", MEDDPICC: map[string]int{models.CriterionCompetition: 30}})
	if stuck.Velocity != TrendSlowing {
		t.Errorf("expected slowing velocity, got %s", stuck.Velocity)
	}
	if stuck.Engagement != TrendDecreasing {
		t.Errorf("expected decreasing engagement, got %s", stuck.Engagement)
	}
	if stuck.Competitive != TrendWeak {
		t.Errorf("expected weak competitive position, got %s", stuck.Competitive)
	}

	fresh := deriveTrends(DealSnapshot{DaysInStage: 3, DaysSinceActivity: 2})
	if fresh.Velocity != TrendAccelerating {
		t.Errorf("expected accelerating velocity, got %s", fresh.Velocity)
	}
	if fresh.Engagement != TrendIncreasing {
		t.Errorf("expected increasing engagement, got %s", fresh.Engagement)
	}
	if fresh.Competitive != TrendStrong {
		t.Errorf("no competitor should read as strong, got %s", fresh.Competitive)
	}
}
