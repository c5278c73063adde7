package models

import "testing"

func TestScoreCriteriaBounds(t *testing.T) {
	cases := map[string]map[string]int{
		"empty":    {},
		"all max":  {CriterionMetrics: 10, CriterionChampion: 10, CriterionIdentifyPain: 10},
		"over max": {CriterionMetrics: 25, CriterionChampion: 99},
		"negative": {CriterionMetrics: -5, CriterionChampion: 7},
	}

	for name, criteria := range cases {
		score := ScoreCriteria(criteria)
		if score < 0 || score > 100 {
			t.Errorf("%s: score %d out of [0,100]", name, score)
		}
	}
}

func TestScoreCriteriaClamping(t *testing.T) {
	// 25 обрізається до 10, -5 до 0 (виключається як не оцінений)
	score := ScoreCriteria(map[string]int{
		CriterionMetrics:  25,
		CriterionChampion: -5,
	})
	if score != 100 {
		t.Errorf("expected 100 after clamping, got %d", score)
	}
}

func TestScoreCriteriaExcludesZeros(t *testing.T) {
	// Нулі не входять у знаменник: середнє лише по оцінених критеріях
	score := ScoreCriteria(map[string]int{
		CriterionMetrics:          8,
		CriterionEconomicBuyer:    6,
		CriterionDecisionCriteria: 0,
		CriterionDecisionProcess:  0,
	})
	if score != 70 {
		t.Errorf("expected 70 (avg of 8 and 6 * 10), got %d", score)
	}
}

func TestScoreCriteriaAllZeros(t *testing.T) {
	criteria := make(map[string]int)
	for _, c := range MEDDPICCCriteria {
		criteria[c] = 0
	}

	if score := ScoreCriteria(criteria); score != 0 {
		t.Errorf("expected 0 for all-zero criteria, got %d", score)
	}
}

func TestScoreCriteriaIdempotent(t *testing.T) {
	criteria := map[string]int{
		CriterionMetrics:      7,
		CriterionChampion:     4,
		CriterionIdentifyPain: 9,
	}

	first := ScoreCriteria(criteria)
	second := ScoreCriteria(criteria)
	if first != second {
		t.Errorf("score is not deterministic: %d != %d", first, second)
	}
}

func TestMEDDPICCRecalculate(t *testing.T) {
	m := &MEDDPICC{}
	m.SetCriterion(CriterionIdentifyPain, 8)
	m.SetCriterion(CriterionChampion, 6)
	m.SetCriterion(CriterionCompetition, 42) // clamped to 10
	m.Recalculate()

	if m.Score != 80 {
		t.Errorf("expected score 80, got %d", m.Score)
	}

	// Score завжди похідний: пряме присвоєння перетирається
	m.Score = 11
	m.Recalculate()
	if m.Score != 80 {
		t.Errorf("expected recalculated score 80, got %d", m.Score)
	}
}

func TestMEDDPICCSetCriterionUnknownName(t *testing.T) {
	m := &MEDDPICC{Metrics: 5}
	m.SetCriterion("bogus", 9)
	m.Recalculate()

	if m.Score != 50 {
		t.Errorf("unknown criterion should be ignored, got score %d", m.Score)
	}
}
