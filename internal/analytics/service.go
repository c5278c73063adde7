package analytics

import (
	"log"
	"time"

	"fulqrun-crm/internal/models"
	"fulqrun-crm/internal/pipeline"
	"fulqrun-crm/internal/repository"
)

// Notifier те що сервісу треба від notification-шару
type Notifier interface {
	NotifyDealHealth(opp *models.Opportunity, analysis pipeline.AnalyticsResult)
	NotifySweepSummary(snapshot *models.PipelineSnapshot)
}

// SweepCallback викликається після успішного sweep (websocket broadcast)
type SweepCallback func(*models.PipelineSnapshot)

// Service рахує portfolio-агрегати поверх pipeline-движків та персистить
// щоденні зрізи
type Service struct {
	oppRepo  repository.OpportunityRepository
	snapRepo repository.SnapshotRepository

	adapter   *pipeline.Adapter
	health    *pipeline.HealthAnalyzer
	portfolio *pipeline.PortfolioAnalyzer

	notifier Notifier
	onSweep  SweepCallback
}

func NewService(
	oppRepo repository.OpportunityRepository,
	snapRepo repository.SnapshotRepository,
	adapter *pipeline.Adapter,
	notifier Notifier,
) *Service {
	health := pipeline.NewHealthAnalyzer()
	return &Service{
		oppRepo:   oppRepo,
		snapRepo:  snapRepo,
		adapter:   adapter,
		health:    health,
		portfolio: pipeline.NewPortfolioAnalyzer(health),
		notifier:  notifier,
	}
}

// OnSweep реєструє callback на завершення sweep
func (s *Service) OnSweep(cb SweepCallback) {
	s.onSweep = cb
}

// RunPortfolioSweep аналізує всі відкриті угоди, персистить щоденний зріз
// pipeline та алертить по критичних угодах. Запускається cron-ом та вручну.
func (s *Service) RunPortfolioSweep() error {
	opps, err := s.oppRepo.ListOpen(10000, 0)
	if err != nil {
		return err
	}

	snaps := s.adapter.Snapshots(opps)
	summary := s.portfolio.AnalyzePortfolio(snaps)

	snapshot, err := s.snapRepo.GetOrCreate(time.Now())
	if err != nil {
		return err
	}

	snapshot.TotalOpportunities = summary.TotalOpportunities
	snapshot.TotalValue = summary.TotalValue
	snapshot.AverageValue = summary.AverageValue
	snapshot.WeightedValue = summary.WeightedValue
	snapshot.AtRiskCount = summary.AtRiskCount
	snapshot.CriticalCount = summary.ByHealth[models.HealthCritical]

	snapshot.ByStage = make(models.JSONMap, len(summary.ByStage))
	for stage, count := range summary.ByStage {
		snapshot.ByStage[stage] = count
	}
	snapshot.ByHealth = make(models.JSONMap, len(summary.ByHealth))
	for health, count := range summary.ByHealth {
		snapshot.ByHealth[health] = count
	}

	if err := s.snapRepo.Update(snapshot); err != nil {
		return err
	}

	// Алерти по критичних угодах
	if s.notifier != nil {
		for i, snap := range snaps {
			analysis := s.health.AnalyzeDeal(snap)
			if analysis.DealHealth == models.HealthCritical {
				s.notifier.NotifyDealHealth(opps[i], analysis)
			}
		}
		s.notifier.NotifySweepSummary(snapshot)
	}

	if s.onSweep != nil {
		s.onSweep(snapshot)
	}

	log.Printf("📊 Portfolio sweep: %d deals, $%.0f total, %d at risk",
		summary.TotalOpportunities, summary.TotalValue, summary.AtRiskCount)

	return nil
}

// GetSnapshotHistory повертає зрізи pipeline за останні days днів
func (s *Service) GetSnapshotHistory(days int) ([]*models.PipelineSnapshot, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -days)
	return s.snapRepo.ListRange(from, to)
}

// GetLatestSnapshot повертає останній збережений зріз
func (s *Service) GetLatestSnapshot() (*models.PipelineSnapshot, error) {
	return s.snapRepo.Latest()
}
