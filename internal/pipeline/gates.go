package pipeline

import (
	"fmt"

	"fulqrun-crm/internal/models"
)

// Пороги gate-предикатів. Sub-scores тут уже в шкалі [0,100].
const (
	painThreshold        = 50
	budgetThreshold      = 50
	championThreshold    = 60
	legalThreshold       = 60
	negotiationThreshold = 60 // probability
	nearCertainThreshold = 90 // probability
)

// Gate іменований boolean-предикат над DealSnapshot.
// Gates незалежні один від одного і AND-комбінуються в межах стадії.
type Gate struct {
	Name  string
	Check func(DealSnapshot) bool
}

// StageConfig конфігурація однієї стадії: наступна стадія та ordered gates
type StageConfig struct {
	Stage string
	Next  string
	Gates []Gate
}

// Catalog іммутабельна таблиця конфігурації стадій та remediation-текстів.
// Будується один раз на старті і передається в движки по reference.
type Catalog struct {
	stages  map[string]StageConfig
	actions map[string]string
}

// Stage повертає конфігурацію стадії
func (c *Catalog) Stage(name string) (StageConfig, bool) {
	cfg, ok := c.stages[name]
	return cfg, ok
}

// Action повертає remediation-текст для gate. Невідомі gates
// отримують generic fallback.
func (c *Catalog) Action(gate string) string {
	if action, ok := c.actions[gate]; ok {
		return action
	}
	return fmt.Sprintf("Complete %s requirements", gate)
}

// DefaultCatalog будує стандартний каталог gates для PEAK pipeline
func DefaultCatalog() *Catalog {
	stages := []StageConfig{
		{
			Stage: models.StageProspect,
			Next:  models.StageEngage,
			Gates: []Gate{
				{
					Name: "qualified_need",
					Check: func(s DealSnapshot) bool {
						return s.MEDDPICC[models.CriterionIdentifyPain] > painThreshold
					},
				},
				{
					Name: "budget_confirmed",
					Check: func(s DealSnapshot) bool {
						return s.MEDDPICC[models.CriterionEconomicBuyer] > budgetThreshold
					},
				},
				{
					Name: "timeline_defined",
					Check: func(s DealSnapshot) bool {
						return s.ExpectedCloseDate != nil
					},
				},
			},
		},
		{
			Stage: models.StageEngage,
			Next:  models.StageAcquire,
			Gates: []Gate{
				{
					Name: "decision_maker_identified",
					Check: func(s DealSnapshot) bool {
						return s.HasDecisionMaker
					},
				},
				{
					Name: "champion_established",
					Check: func(s DealSnapshot) bool {
						return s.MEDDPICC[models.CriterionChampion] > championThreshold
					},
				},
				{
					Name: "solution_presented",
					Check: func(s DealSnapshot) bool {
						return s.SolutionPresented
					},
				},
			},
		},
		{
			Stage: models.StageAcquire,
			Next:  models.StageKeep,
			Gates: []Gate{
				{
					Name: "proposal_submitted",
					Check: func(s DealSnapshot) bool {
						return s.ProposalSubmitted
					},
				},
				{
					Name: "terms_negotiated",
					Check: func(s DealSnapshot) bool {
						return s.Probability > negotiationThreshold
					},
				},
				{
					Name: "legal_approved",
					Check: func(s DealSnapshot) bool {
						return s.MEDDPICC[models.CriterionPaperProcess] > legalThreshold
					},
				},
			},
		},
		{
			Stage: models.StageKeep,
			Next:  models.StageClosedWon,
			Gates: []Gate{
				{
					Name: "contract_signed",
					Check: func(s DealSnapshot) bool {
						return s.Probability >= nearCertainThreshold
					},
				},
				{
					Name: "payment_terms_agreed",
					Check: func(s DealSnapshot) bool {
						return s.PaymentTermsAgreed
					},
				},
				{
					Name: "implementation_planned",
					Check: func(s DealSnapshot) bool {
						return s.ImplementationPlanned
					},
				},
			},
		},
		// Термінальні стадії: без gates, без наступної стадії
		{Stage: models.StageClosedWon},
		{Stage: models.StageClosedLost},
	}

	catalog := &Catalog{
		stages: make(map[string]StageConfig, len(stages)),
		actions: map[string]string{
			"qualified_need":            "Quantify the customer's pain and the cost of doing nothing",
			"budget_confirmed":          "Confirm budget availability with the economic buyer",
			"timeline_defined":          "Agree an expected close date with the customer",
			"decision_maker_identified": "Identify and log the decision maker contact",
			"champion_established":      "Develop internal champion who will advocate for your solution",
			"solution_presented":        "Schedule a demo or solution presentation",
			"proposal_submitted":        "Prepare and submit a formal proposal",
			"terms_negotiated":          "Negotiate commercial terms to raise close probability",
			"legal_approved":            "Complete legal review and the paper process",
			"contract_signed":           "Obtain the signed contract from the customer",
			"payment_terms_agreed":      "Agree payment terms and log the agreement",
			"implementation_planned":    "Plan implementation and log the kickoff activity",
		},
	}

	for _, cfg := range stages {
		catalog.stages[cfg.Stage] = cfg
	}

	return catalog
}
