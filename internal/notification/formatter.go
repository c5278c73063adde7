package notification

import (
	"fmt"
	"strings"

	"fulqrun-crm/internal/models"
	"fulqrun-crm/internal/pipeline"
)

type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatCriticalDeal форматує алерт по критичній угоді (Telegram HTML)
func (f *Formatter) FormatCriticalDeal(opp *models.Opportunity, analysis pipeline.AnalyticsResult) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("🚨 <b>%s</b>\n\n", opp.Name))
	builder.WriteString(fmt.Sprintf("💵 Value: <b>$%.0f</b>\n", opp.Value))
	builder.WriteString(fmt.Sprintf("📍 Stage: <b>%s</b>\n", opp.Stage))
	builder.WriteString(fmt.Sprintf("❤️ Health: <b>%s</b> (score %d)\n", analysis.DealHealth, analysis.Score))

	if opp.Account != "" {
		builder.WriteString(fmt.Sprintf("🏢 Account: <b>%s</b>\n", opp.Account))
	}

	if len(analysis.RiskFactors) > 0 {
		builder.WriteString("\n⚠️ Risk factors:\n")
		for _, factor := range analysis.RiskFactors {
			builder.WriteString(fmt.Sprintf("• %s\n", factor))
		}
	}

	if len(analysis.Recommendations) > 0 {
		builder.WriteString("\n💡 Next steps:\n")
		for _, rec := range analysis.Recommendations {
			builder.WriteString(fmt.Sprintf("• %s\n", rec))
		}
	}

	return builder.String()
}

// FormatSweepSummary форматує підсумок нічного sweep
func (f *Formatter) FormatSweepSummary(snapshot *models.PipelineSnapshot) string {
	var builder strings.Builder

	builder.WriteString("📊 <b>Pipeline sweep</b>\n\n")
	builder.WriteString(fmt.Sprintf("Deals: <b>%d</b>\n", snapshot.TotalOpportunities))
	builder.WriteString(fmt.Sprintf("Total value: <b>$%.0f</b>\n", snapshot.TotalValue))
	builder.WriteString(fmt.Sprintf("Weighted value: <b>$%.0f</b>\n", snapshot.WeightedValue))
	builder.WriteString(fmt.Sprintf("At risk: <b>%d</b> (%.0f%%)\n", snapshot.AtRiskCount, snapshot.AtRiskShare()))
	builder.WriteString(fmt.Sprintf("Critical: <b>%d</b>\n", snapshot.CriticalCount))

	return builder.String()
}
