package insight

// rawDealInsight сира відповідь зовнішнього scoring-сервісу.
// НЕВАЛІДОВАНІ зовнішні дані: поля опціональні, діапазони не гарантовані.
// Ніколи не віддаються наверх і не потрапляють у детерміновані движки
// без явного мапінгу в DealInsight.
type rawDealInsight struct {
	RiskScore   *float64               `json:"risk_score"`
	Summary     *string                `json:"summary"`
	Suggestions []string               `json:"suggestions"`
	Extra       map[string]interface{} `json:"extra"`
}

type insightResponse struct {
	Data *rawDealInsight `json:"data"`
}

// DealInsight санітизована підказка зовнішнього сервісу. Доповнює, але
// ніколи не заміщає локальні результати движків.
type DealInsight struct {
	// 0-100, обрізаний
	RiskScore   int      `json:"risk_score"`
	HasScore    bool     `json:"has_score"`
	Summary     string   `json:"summary,omitempty"`
	Suggestions []string `json:"suggestions"`
	Source      string   `json:"source"`
}

func sanitize(raw *rawDealInsight, source string) *DealInsight {
	out := &DealInsight{
		Suggestions: []string{},
		Source:      source,
	}

	if raw == nil {
		return out
	}

	if raw.RiskScore != nil {
		score := int(*raw.RiskScore)
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		out.RiskScore = score
		out.HasScore = true
	}

	if raw.Summary != nil {
		out.Summary = *raw.Summary
	}

	for _, s := range raw.Suggestions {
		if s != "" {
			out.Suggestions = append(out.Suggestions, s)
		}
	}

	return out
}
