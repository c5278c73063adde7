package models

import "math"

// MEDDPICC критерії кваліфікації. Кожен критерій оцінюється 0-10,
// де 0 означає "ще не оцінено".
const (
	CriterionMetrics          = "metrics"
	CriterionEconomicBuyer    = "economic_buyer"
	CriterionDecisionCriteria = "decision_criteria"
	CriterionDecisionProcess  = "decision_process"
	CriterionPaperProcess     = "paper_process"
	CriterionIdentifyPain     = "identify_pain"
	CriterionChampion         = "champion"
	CriterionCompetition      = "competition"
)

// MEDDPICCCriteria всі критерії у канонічному порядку
var MEDDPICCCriteria = []string{
	CriterionMetrics,
	CriterionEconomicBuyer,
	CriterionDecisionCriteria,
	CriterionDecisionProcess,
	CriterionPaperProcess,
	CriterionIdentifyPain,
	CriterionChampion,
	CriterionCompetition,
}

type MEDDPICC struct {
	BaseModel

	OpportunityID uint `gorm:"uniqueIndex;not null" json:"opportunity_id"`

	Metrics          int `gorm:"default:0" json:"metrics"`
	EconomicBuyer    int `gorm:"default:0" json:"economic_buyer"`
	DecisionCriteria int `gorm:"default:0" json:"decision_criteria"`
	DecisionProcess  int `gorm:"default:0" json:"decision_process"`
	PaperProcess     int `gorm:"default:0" json:"paper_process"`
	IdentifyPain     int `gorm:"default:0" json:"identify_pain"`
	Champion         int `gorm:"default:0" json:"champion"`
	Competition      int `gorm:"default:0" json:"competition"`

	// Нотатки по критеріях (criterion -> text)
	Notes JSONMap `gorm:"type:jsonb;serializer:json" json:"notes,omitempty"`

	// Агрегований score 0-100. Завжди перераховується з критеріїв,
	// ніколи не приймається ззовні.
	Score int `gorm:"default:0" json:"score"`
}

func (*MEDDPICC) TableName() string {
	return "meddpicc_records"
}

// CriterionScores повертає map критерій -> score (0-10)
func (m *MEDDPICC) CriterionScores() map[string]int {
	return map[string]int{
		CriterionMetrics:          m.Metrics,
		CriterionEconomicBuyer:    m.EconomicBuyer,
		CriterionDecisionCriteria: m.DecisionCriteria,
		CriterionDecisionProcess:  m.DecisionProcess,
		CriterionPaperProcess:     m.PaperProcess,
		CriterionIdentifyPain:     m.IdentifyPain,
		CriterionChampion:         m.Champion,
		CriterionCompetition:      m.Competition,
	}
}

// SetCriterion оновлює один критерій (значення поза [0,10] обрізаються)
func (m *MEDDPICC) SetCriterion(name string, score int) {
	score = clampCriterion(score)

	switch name {
	case CriterionMetrics:
		m.Metrics = score
	case CriterionEconomicBuyer:
		m.EconomicBuyer = score
	case CriterionDecisionCriteria:
		m.DecisionCriteria = score
	case CriterionDecisionProcess:
		m.DecisionProcess = score
	case CriterionPaperProcess:
		m.PaperProcess = score
	case CriterionIdentifyPain:
		m.IdentifyPain = score
	case CriterionChampion:
		m.Champion = score
	case CriterionCompetition:
		m.Competition = score
	}
}

// Recalculate перераховує агрегований score з критеріїв
func (m *MEDDPICC) Recalculate() {
	m.Score = ScoreCriteria(m.CriterionScores())
}

// ScoreCriteria агрегує критерії (0-10) в confidence score 0-100.
// Нульові критерії вважаються "не оціненими" і виключаються з середнього,
// щоб не штрафувати щойно створені угоди. Якщо всі критерії нульові - score 0.
func ScoreCriteria(criteria map[string]int) int {
	sum := 0
	assessed := 0

	for _, score := range criteria {
		score = clampCriterion(score)
		if score == 0 {
			continue
		}
		sum += score
		assessed++
	}

	if assessed == 0 {
		return 0
	}

	return int(math.Round(float64(sum) / float64(assessed) * 10))
}

func clampCriterion(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
