package models

import "time"

// Канонічні стадії pipeline (PEAK). Кожна не-термінальна стадія має рівно одну
// наступну стадію; перехід контролюється gate-ами в internal/pipeline.
const (
	StageProspect   = "prospect"
	StageEngage     = "engage"
	StageAcquire    = "acquire"
	StageKeep       = "keep"
	StageClosedWon  = "closed_won"
	StageClosedLost = "closed_lost" // тільки ручний override, без gates
)

// PipelineStages стадії у порядку проходження (без closed_lost)
var PipelineStages = []string{
	StageProspect,
	StageEngage,
	StageAcquire,
	StageKeep,
	StageClosedWon,
}

const (
	HealthHealthy  = "healthy"
	HealthAtRisk   = "at_risk"
	HealthCritical = "critical"
)

type Opportunity struct {
	BaseModel

	ExternalID  string `gorm:"uniqueIndex;not null" json:"external_id"` // UUID
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Account     string `gorm:"index" json:"account"` // назва компанії-клієнта

	Value       float64 `gorm:"index" json:"value"`       // сума угоди в USD
	Probability int     `gorm:"default:0" json:"probability"` // 0-100

	Stage          string    `gorm:"index;not null;default:prospect" json:"stage"`
	StageEnteredAt time.Time `json:"stage_entered_at"` // коли угода увійшла в поточну стадію

	ExpectedCloseDate *time.Time `gorm:"index" json:"expected_close_date"`
	ActualCloseDate   *time.Time `json:"actual_close_date"`
	LastActivityAt    *time.Time `json:"last_activity_at"`

	Competitor string `json:"competitor,omitempty"`

	// Telegram chat власника угоди для алертів (0 = без алертів)
	OwnerChatID int64 `json:"owner_chat_id,omitempty"`

	MEDDPICC   *MEDDPICC  `gorm:"foreignKey:OpportunityID" json:"meddpicc,omitempty"`
	Contacts   []Contact  `gorm:"foreignKey:OpportunityID" json:"contacts,omitempty"`
	Activities []Activity `gorm:"foreignKey:OpportunityID" json:"activities,omitempty"`

	Metadata JSONMap `gorm:"type:jsonb;serializer:json" json:"metadata,omitempty"`
}

func (*Opportunity) TableName() string {
	return "opportunities"
}

// IsClosed перевіряє чи угода закрита (виграна або програна)
func (o *Opportunity) IsClosed() bool {
	return o.Stage == StageClosedWon || o.Stage == StageClosedLost
}

// WeightedValue повертає value зважений на ймовірність закриття
func (o *Opportunity) WeightedValue() float64 {
	return o.Value * float64(o.Probability) / 100
}

// IsValidStage перевіряє чи stage належить канонічному словнику
func IsValidStage(stage string) bool {
	if stage == StageClosedLost {
		return true
	}
	for _, s := range PipelineStages {
		if s == stage {
			return true
		}
	}
	return false
}
