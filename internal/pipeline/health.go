package pipeline

import (
	"fmt"

	"fulqrun-crm/internal/models"
)

// Пороги та штрафи risk-правил
const (
	stagnationDays    = 30
	stagnationPenalty = 15

	staleDays        = 14
	stalenessPenalty = 20

	weakQualificationMean    = 60
	weakQualificationPenalty = 10

	smallDealValue = 10_000
	largeDealValue = 500_000

	healthyFloor = 80
	atRiskFloor  = 60
)

const (
	TrendAccelerating = "accelerating"
	TrendSlowing      = "slowing"
	TrendIncreasing   = "increasing"
	TrendDecreasing   = "decreasing"
	TrendStable       = "stable"
	TrendStrong       = "strong"
	TrendModerate     = "moderate"
	TrendWeak         = "weak"
)

// Trends евристичні індикатори динаміки угоди
type Trends struct {
	Velocity    string `json:"velocity"`    // accelerating / stable / slowing
	Engagement  string `json:"engagement"`  // increasing / stable / decreasing
	Competitive string `json:"competitive"` // strong / moderate / weak
}

// AnalyticsResult результат аналізу здоров'я угоди
type AnalyticsResult struct {
	DealHealth      string   `json:"deal_health"`
	RiskFactors     []string `json:"risk_factors"`
	Recommendations []string `json:"recommendations"`
	Score           int      `json:"score"`
	Trends          Trends   `json:"trends"`
	ConfidenceLevel int      `json:"confidence_level"`
}

// HealthAnalyzer рахує health score незалежно від stage gates
type HealthAnalyzer struct{}

// NewHealthAnalyzer створює новий HealthAnalyzer
func NewHealthAnalyzer() *HealthAnalyzer {
	return &HealthAnalyzer{}
}

// AnalyzeDeal стартує з baseline 100 і віднімає фіксовані штрафи коли
// спрацьовують правила. Штрафи кумулятивні, без short-circuit.
// Детермінований для даного snapshot, помилок не повертає.
func (a *HealthAnalyzer) AnalyzeDeal(snap DealSnapshot) AnalyticsResult {
	result := AnalyticsResult{
		RiskFactors:     []string{},
		Recommendations: []string{},
	}

	penalties := 0

	// Правило 1: застій у стадії
	if snap.DaysInStage > stagnationDays {
		penalties += stagnationPenalty
		result.RiskFactors = append(result.RiskFactors,
			fmt.Sprintf("Deal has been in the %s stage for %d days", snap.Stage, snap.DaysInStage))
		result.Recommendations = append(result.Recommendations,
			"Re-engage the buyer and revisit the mutual close plan")
	}

	// Правило 2: давно не було активності
	if snap.DaysSinceActivity > staleDays {
		penalties += stalenessPenalty
		result.RiskFactors = append(result.RiskFactors,
			fmt.Sprintf("No logged activity for %d days", snap.DaysSinceActivity))
		result.Recommendations = append(result.Recommendations,
			"Log a touchpoint with the customer this week")
	}

	// Правило 3: advisory по value, без штрафу
	if snap.Value < smallDealValue {
		result.Recommendations = append(result.Recommendations,
			"Qualify expansion potential - deal value is below $10k")
	}
	if snap.Value > largeDealValue {
		result.Recommendations = append(result.Recommendations,
			"Engage senior stakeholders for this high-value deal")
	}

	// Правило 4: слабка кваліфікація. Порожня MEDDPICC map означає
	// "немає даних кваліфікації" - штраф пропускається, щоб уникнути
	// ділення на нуль.
	if len(snap.MEDDPICC) > 0 {
		sum := 0
		for _, score := range snap.MEDDPICC {
			sum += score
		}
		mean := float64(sum) / float64(len(snap.MEDDPICC))
		if mean < weakQualificationMean {
			penalties += weakQualificationPenalty
			result.RiskFactors = append(result.RiskFactors,
				fmt.Sprintf("MEDDPICC qualification is weak (average %.0f of 100)", mean))
			result.Recommendations = append(result.Recommendations,
				"Strengthen MEDDPICC qualification before advancing")
		}
	}

	result.Score = 100 - penalties
	if result.Score < 0 {
		result.Score = 0
	}

	result.DealHealth = classifyHealth(result.Score)
	result.ConfidenceLevel = result.Score
	result.Trends = deriveTrends(snap)

	return result
}

// classifyHealth мапить score у health bucket
func classifyHealth(score int) string {
	switch {
	case score >= healthyFloor:
		return models.HealthHealthy
	case score >= atRiskFloor:
		return models.HealthAtRisk
	default:
		return models.HealthCritical
	}
}

// deriveTrends виводить індикатори з тих самих часових сигналів що й
// risk-правила. Відома спрощена евристика: справжніх історичних серій
// тут немає.
func deriveTrends(snap DealSnapshot) Trends {
	trends := Trends{
		Velocity:    TrendStable,
		Engagement:  TrendStable,
		Competitive: TrendModerate,
	}

	switch {
	case snap.DaysInStage > stagnationDays:
		trends.Velocity = TrendSlowing
	case snap.DaysInStage <= 7:
		trends.Velocity = TrendAccelerating
	}

	switch {
	case snap.DaysSinceActivity > staleDays:
		trends.Engagement = TrendDecreasing
	case snap.DaysSinceActivity >= 0 && snap.DaysSinceActivity <= 7:
		trends.Engagement = TrendIncreasing
	}

	competition := snap.MEDDPICC[models.CriterionCompetition]
	switch {
	case snap.Competitor == "":
		trends.Competitive = TrendStrong
	case competition >= 70:
		trends.Competitive = TrendStrong
	case competition < 40:
		trends.Competitive = TrendWeak
	}

	return trends
}
