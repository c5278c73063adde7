package notification

import (
	"sync"
	"time"

	"fulqrun-crm/internal/models"
	"fulqrun-crm/internal/pipeline"
)

// Не частіше одного алерту на угоду за цей період
const alertCooldown = 24 * time.Hour

// Filter вирішує чи слати алерт по угоді
type Filter struct {
	mu        sync.Mutex
	lastAlert map[uint]time.Time
}

func NewFilter() *Filter {
	return &Filter{
		lastAlert: make(map[uint]time.Time),
	}
}

// ShouldNotify: алертимо тільки critical угоди, які ще відкриті,
// і не частіше ніж раз на cooldown
func (f *Filter) ShouldNotify(opp *models.Opportunity, analysis pipeline.AnalyticsResult) bool {
	if opp.IsClosed() {
		return false
	}

	if analysis.DealHealth != models.HealthCritical {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if last, ok := f.lastAlert[opp.ID]; ok && time.Since(last) < alertCooldown {
		return false
	}

	f.lastAlert[opp.ID] = time.Now()
	return true
}

// Reset скидає cooldown угоди (після переходу стадії алерт знову актуальний)
func (f *Filter) Reset(dealID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lastAlert, dealID)
}
