package pipeline

import "fulqrun-crm/internal/models"

// PortfolioSummary агрегати по всьому pipeline
type PortfolioSummary struct {
	TotalOpportunities int     `json:"total_opportunities"`
	TotalValue         float64 `json:"total_value"`
	AverageValue       float64 `json:"average_value"`
	WeightedValue      float64 `json:"weighted_value"`

	ByStage  map[string]int `json:"by_stage"`
	ByHealth map[string]int `json:"by_health"`

	AtRiskCount int `json:"at_risk_count"` // health != healthy
}

// PortfolioAnalyzer stateless fold по колекції угод
type PortfolioAnalyzer struct {
	health *HealthAnalyzer
}

// NewPortfolioAnalyzer створює новий PortfolioAnalyzer
func NewPortfolioAnalyzer(health *HealthAnalyzer) *PortfolioAnalyzer {
	if health == nil {
		health = NewHealthAnalyzer()
	}
	return &PortfolioAnalyzer{health: health}
}

// AnalyzePortfolio проганяє AnalyzeDeal по кожному snapshot і згортає
// результати. Порожній вхід дає нульові агрегати без NaN.
func (p *PortfolioAnalyzer) AnalyzePortfolio(snaps []DealSnapshot) PortfolioSummary {
	summary := PortfolioSummary{
		ByStage:  make(map[string]int),
		ByHealth: make(map[string]int),
	}

	for _, snap := range snaps {
		summary.TotalOpportunities++
		summary.TotalValue += snap.Value
		summary.WeightedValue += snap.Value * float64(snap.Probability) / 100
		summary.ByStage[snap.Stage]++

		analysis := p.health.AnalyzeDeal(snap)
		summary.ByHealth[analysis.DealHealth]++
		if analysis.DealHealth != models.HealthHealthy {
			summary.AtRiskCount++
		}
	}

	if summary.TotalOpportunities > 0 {
		summary.AverageValue = summary.TotalValue / float64(summary.TotalOpportunities)
	}

	return summary
}
