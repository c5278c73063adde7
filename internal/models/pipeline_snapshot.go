package models

import "time"

// PipelineSnapshot зберігає щоденний зріз стану pipeline
// (розраховується нічним sweep-ом, див. internal/analytics)
type PipelineSnapshot struct {
	BaseModel

	Date time.Time `gorm:"uniqueIndex;not null" json:"date"`

	TotalOpportunities int     `gorm:"default:0" json:"total_opportunities"`
	TotalValue         float64 `gorm:"type:decimal(14,2);default:0" json:"total_value"`
	AverageValue       float64 `gorm:"type:decimal(14,2);default:0" json:"average_value"`
	WeightedValue      float64 `gorm:"type:decimal(14,2);default:0" json:"weighted_value"`

	// Розподіл угод (stage -> count, health -> count)
	ByStage  JSONMap `gorm:"type:jsonb;serializer:json" json:"by_stage"`
	ByHealth JSONMap `gorm:"type:jsonb;serializer:json" json:"by_health"`

	AtRiskCount   int `gorm:"default:0" json:"at_risk_count"`   // health != healthy
	CriticalCount int `gorm:"default:0" json:"critical_count"`
}

func (*PipelineSnapshot) TableName() string {
	return "pipeline_snapshots"
}

// AtRiskShare повертає частку угод під ризиком (0-100)
func (ps *PipelineSnapshot) AtRiskShare() float64 {
	if ps.TotalOpportunities == 0 {
		return 0
	}
	return float64(ps.AtRiskCount) / float64(ps.TotalOpportunities) * 100
}
