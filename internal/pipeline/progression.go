package pipeline

import "math"

// Auto-advance вимагає confidence понад цей поріг додатково до всіх gates.
// При AND-семантиці gates поріг фактично надлишковий (всі gates пройдені ->
// confidence 100), але залишений як явна точка розширення для partial-credit
// gating.
const autoAdvanceThreshold = 80

// ProgressionResult результат оцінки стадії
type ProgressionResult struct {
	Stage           string          `json:"stage"`
	CanAdvance      bool            `json:"can_advance"`
	GatesPassed     map[string]bool `json:"gates_passed"`
	RequiredActions []string        `json:"required_actions"`
	NextStage       string          `json:"next_stage,omitempty"`
	Confidence      int             `json:"confidence"`
}

// AutoAdvanceResult рішення про автоматичне просування
type AutoAdvanceResult struct {
	CanAdvance bool   `json:"can_advance"`
	NextStage  string `json:"next_stage,omitempty"`
	Confidence int    `json:"confidence"`
}

// StageEngine rule-based оцінювач stage gates
type StageEngine struct {
	catalog *Catalog
}

// NewStageEngine створює новий StageEngine (nil catalog -> DefaultCatalog)
func NewStageEngine(catalog *Catalog) *StageEngine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &StageEngine{catalog: catalog}
}

// EvaluateStage оцінює всі gates стадії проти snapshot. Невідома стадія -
// це configuration error: повертається zero-confidence результат з
// пояснювальним текстом, а не помилка, бо UI завжди потребує renderable
// результату.
func (e *StageEngine) EvaluateStage(snap DealSnapshot, stage string) ProgressionResult {
	result := ProgressionResult{
		Stage:           stage,
		GatesPassed:     make(map[string]bool),
		RequiredActions: []string{},
	}

	cfg, ok := e.catalog.Stage(stage)
	if !ok {
		result.RequiredActions = append(result.RequiredActions, "Stage configuration not found")
		return result
	}

	result.NextStage = cfg.Next

	// Термінальна стадія: gates відсутні, просування неможливе
	if len(cfg.Gates) == 0 {
		return result
	}

	passed := 0
	for _, gate := range cfg.Gates {
		ok := gate.Check(snap)
		result.GatesPassed[gate.Name] = ok
		if ok {
			passed++
		} else {
			// Порядок дій відповідає declared gate order
			result.RequiredActions = append(result.RequiredActions, e.catalog.Action(gate.Name))
		}
	}

	result.CanAdvance = passed == len(cfg.Gates)
	result.Confidence = int(math.Round(float64(passed) / float64(len(cfg.Gates)) * 100))

	return result
}

// CanAutoAdvance вирішує чи угода може бути автоматично просунута зі своєї
// поточної стадії. Без side effects: застосування зміни стадії -
// відповідальність викликаючого шару.
func (e *StageEngine) CanAutoAdvance(snap DealSnapshot) AutoAdvanceResult {
	evaluation := e.EvaluateStage(snap, snap.Stage)

	return AutoAdvanceResult{
		CanAdvance: evaluation.CanAdvance &&
			evaluation.Confidence > autoAdvanceThreshold &&
			evaluation.NextStage != "",
		NextStage:  evaluation.NextStage,
		Confidence: evaluation.Confidence,
	}
}
