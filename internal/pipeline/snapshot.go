package pipeline

import (
	"time"

	"fulqrun-crm/internal/models"
)

// DealSnapshot нормалізований read-only вхід для движків.
// Будується з Opportunity один раз на аналіз, не персиститься.
type DealSnapshot struct {
	ID         uint   `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`

	Value       float64 `json:"value"`
	Stage       string  `json:"stage"`
	Probability int     `json:"probability"`

	DaysInStage    int `json:"days_in_stage"`
	DaysInPipeline int `json:"days_in_pipeline"`

	// -1 якщо активностей ще не було
	DaysSinceActivity int        `json:"days_since_activity"`
	LastActivityAt    *time.Time `json:"last_activity_at,omitempty"`

	// MEDDPICC sub-scores перемасштабовані в [0,100]; тільки оцінені
	// (ненульові) критерії - нуль тут означає "критерій відсутній"
	MEDDPICC      map[string]int `json:"meddpicc"`
	MEDDPICCScore int            `json:"meddpicc_score"`

	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty"`
	ActualCloseDate   *time.Time `json:"actual_close_date,omitempty"`
	Competitor        string     `json:"competitor,omitempty"`

	// Факти з контактів та activity log для existence-gates
	HasDecisionMaker      bool `json:"has_decision_maker"`
	SolutionPresented     bool `json:"solution_presented"`
	ProposalSubmitted     bool `json:"proposal_submitted"`
	PaymentTermsAgreed    bool `json:"payment_terms_agreed"`
	ImplementationPlanned bool `json:"implementation_planned"`
}

// Adapter будує DealSnapshot з персистентної Opportunity
type Adapter struct {
	clock Clock
}

// NewAdapter створює новий Adapter (nil clock -> системний час)
func NewAdapter(clock Clock) *Adapter {
	if clock == nil {
		clock = SystemClock()
	}
	return &Adapter{clock: clock}
}

// ToSnapshot конвертує Opportunity в DealSnapshot. Ніколи не фейлиться:
// відсутні опціональні поля дефолтяться, а не відхиляються.
func (a *Adapter) ToSnapshot(opp *models.Opportunity) DealSnapshot {
	now := a.clock.Now()

	snap := DealSnapshot{
		ID:                opp.ID,
		ExternalID:        opp.ExternalID,
		Name:              opp.Name,
		Value:             opp.Value,
		Stage:             opp.Stage,
		Probability:       opp.Probability,
		DaysSinceActivity: -1,
		MEDDPICC:          make(map[string]int),
		ExpectedCloseDate: opp.ExpectedCloseDate,
		ActualCloseDate:   opp.ActualCloseDate,
		Competitor:        opp.Competitor,
	}

	if snap.Value < 0 {
		snap.Value = 0
	}
	if snap.Probability < 0 {
		snap.Probability = 0
	}
	if snap.Probability > 100 {
		snap.Probability = 100
	}

	stageEntered := opp.StageEnteredAt
	if stageEntered.IsZero() {
		stageEntered = opp.CreatedAt
	}
	snap.DaysInStage = daysBetween(stageEntered, now)
	snap.DaysInPipeline = daysBetween(opp.CreatedAt, now)

	if opp.LastActivityAt != nil {
		snap.LastActivityAt = opp.LastActivityAt
		snap.DaysSinceActivity = daysBetween(*opp.LastActivityAt, now)
	}

	if opp.MEDDPICC != nil {
		for name, score := range opp.MEDDPICC.CriterionScores() {
			if score > 0 {
				snap.MEDDPICC[name] = score * 10
			}
		}
		snap.MEDDPICCScore = models.ScoreCriteria(opp.MEDDPICC.CriterionScores())
	}

	for _, contact := range opp.Contacts {
		if contact.IsDecisionMaker {
			snap.HasDecisionMaker = true
			break
		}
	}

	for _, activity := range opp.Activities {
		switch activity.Type {
		case models.ActivityTypeDemo:
			snap.SolutionPresented = true
		case models.ActivityTypeProposal:
			snap.SolutionPresented = true
			snap.ProposalSubmitted = true
		case models.ActivityTypePaymentTerms:
			snap.PaymentTermsAgreed = true
		case models.ActivityTypeImplementation:
			snap.ImplementationPlanned = true
		}
	}

	return snap
}

// Snapshots конвертує колекцію угод (для portfolio аналізу)
func (a *Adapter) Snapshots(opps []*models.Opportunity) []DealSnapshot {
	snaps := make([]DealSnapshot, 0, len(opps))
	for _, opp := range opps {
		snaps = append(snaps, a.ToSnapshot(opp))
	}
	return snaps
}

func daysBetween(from, to time.Time) int {
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
