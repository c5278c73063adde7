package analytics

import (
	"testing"
	"time"

	"fulqrun-crm/internal/models"
	"fulqrun-crm/internal/pipeline"
	"fulqrun-crm/internal/repository"
)

// Mock repositories for testing

type mockOpportunityRepo struct {
	opportunities []*models.Opportunity
}

func (m *mockOpportunityRepo) Create(opp *models.Opportunity) error {
	m.opportunities = append(m.opportunities, opp)
	return nil
}

func (m *mockOpportunityRepo) GetByID(id uint) (*models.Opportunity, error) {
	for _, opp := range m.opportunities {
		if opp.ID == id {
			return opp, nil
		}
	}
	return nil, nil
}

func (m *mockOpportunityRepo) GetByExternalID(externalID string) (*models.Opportunity, error) {
	for _, opp := range m.opportunities {
		if opp.ExternalID == externalID {
			return opp, nil
		}
	}
	return nil, nil
}

func (m *mockOpportunityRepo) Update(opp *models.Opportunity) error { return nil }
func (m *mockOpportunityRepo) Delete(id uint) error                 { return nil }

func (m *mockOpportunityRepo) ListOpen(limit, offset int) ([]*models.Opportunity, error) {
	result := make([]*models.Opportunity, 0)
	for _, opp := range m.opportunities {
		if !opp.IsClosed() {
			result = append(result, opp)
		}
	}
	return result, nil
}

func (m *mockOpportunityRepo) ListByFilters(filters repository.OpportunityFilters) ([]*models.Opportunity, error) {
	return m.opportunities, nil
}

func (m *mockOpportunityRepo) CountOpen() (int64, error) {
	opps, _ := m.ListOpen(0, 0)
	return int64(len(opps)), nil
}

func (m *mockOpportunityRepo) AdvanceStage(id uint, stage string, enteredAt time.Time) error {
	for _, opp := range m.opportunities {
		if opp.ID == id {
			opp.Stage = stage
			opp.StageEnteredAt = enteredAt
		}
	}
	return nil
}

func (m *mockOpportunityRepo) SaveMEDDPICC(record *models.MEDDPICC) error { return nil }
func (m *mockOpportunityRepo) AddContact(contact *models.Contact) error   { return nil }
func (m *mockOpportunityRepo) AddActivity(activity *models.Activity) error {
	return nil
}

type mockSnapshotRepo struct {
	snapshots map[string]*models.PipelineSnapshot
}

func newMockSnapshotRepo() *mockSnapshotRepo {
	return &mockSnapshotRepo{snapshots: make(map[string]*models.PipelineSnapshot)}
}

func (m *mockSnapshotRepo) GetByDate(date time.Time) (*models.PipelineSnapshot, error) {
	return m.snapshots[date.Format("2006-01-02")], nil
}

func (m *mockSnapshotRepo) GetOrCreate(date time.Time) (*models.PipelineSnapshot, error) {
	key := date.Format("2006-01-02")
	if snapshot, exists := m.snapshots[key]; exists {
		return snapshot, nil
	}
	snapshot := &models.PipelineSnapshot{Date: date}
	m.snapshots[key] = snapshot
	return snapshot, nil
}

func (m *mockSnapshotRepo) Update(snapshot *models.PipelineSnapshot) error {
	m.snapshots[snapshot.Date.Format("2006-01-02")] = snapshot
	return nil
}

func (m *mockSnapshotRepo) ListRange(from, to time.Time) ([]*models.PipelineSnapshot, error) {
	result := make([]*models.PipelineSnapshot, 0)
	for _, s := range m.snapshots {
		result = append(result, s)
	}
	return result, nil
}

func (m *mockSnapshotRepo) Latest() (*models.PipelineSnapshot, error) {
	var latest *models.PipelineSnapshot
	for _, s := range m.snapshots {
		if latest == nil || s.Date.After(latest.Date) {
			latest = s
		}
	}
	return latest, nil
}

type mockNotifier struct {
	dealAlerts     int
	sweepSummaries int
}

func (m *mockNotifier) NotifyDealHealth(opp *models.Opportunity, analysis pipeline.AnalyticsResult) {
	m.dealAlerts++
}

func (m *mockNotifier) NotifySweepSummary(snapshot *models.PipelineSnapshot) {
	m.sweepSummaries++
}

func TestRunPortfolioSweep(t *testing.T) {
	now := time.Now()
	oppRepo := &mockOpportunityRepo{
		opportunities: []*models.Opportunity{
			{
				BaseModel:      models.BaseModel{ID: 1, CreatedAt: now.AddDate(0, 0, -5)},
				Name:           "Fresh deal",
				Value:          40_000,
				Probability:    30,
				Stage:          models.StageProspect,
				StageEnteredAt: now.AddDate(0, 0, -5),
			},
			{
				// Стухла угода: stagnation + слабка кваліфікація + staleness -> critical
				BaseModel:      models.BaseModel{ID: 2, CreatedAt: now.AddDate(0, 0, -120)},
				Name:           "Stale deal",
				Value:          200_000,
				Probability:    50,
				Stage:          models.StageEngage,
				StageEnteredAt: now.AddDate(0, 0, -60),
				LastActivityAt: timePtr(now.AddDate(0, 0, -30)),
				MEDDPICC:       &models.MEDDPICC{Champion: 3},
			},
			{
				// Закрита угода: у sweep не потрапляє
				BaseModel: models.BaseModel{ID: 3, CreatedAt: now.AddDate(0, 0, -200)},
				Name:      "Won deal",
				Value:     500_000,
				Stage:     models.StageClosedWon,
			},
		},
	}
	snapRepo := newMockSnapshotRepo()
	notifier := &mockNotifier{}

	service := NewService(oppRepo, snapRepo, pipeline.NewAdapter(nil), notifier)

	var broadcasted *models.PipelineSnapshot
	service.OnSweep(func(s *models.PipelineSnapshot) { broadcasted = s })

	if err := service.RunPortfolioSweep(); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	snapshot, _ := snapRepo.Latest()
	if snapshot == nil {
		t.Fatal("sweep did not persist a snapshot")
	}

	if snapshot.TotalOpportunities != 2 {
		t.Errorf("expected 2 open deals in snapshot, got %d", snapshot.TotalOpportunities)
	}
	if snapshot.TotalValue != 240_000 {
		t.Errorf("expected total value 240000, got %f", snapshot.TotalValue)
	}
	if snapshot.CriticalCount != 1 {
		t.Errorf("expected 1 critical deal, got %d", snapshot.CriticalCount)
	}
	if snapshot.AtRiskCount != 1 {
		t.Errorf("expected 1 at-risk deal, got %d", snapshot.AtRiskCount)
	}

	if notifier.dealAlerts != 1 {
		t.Errorf("expected 1 critical-deal alert, got %d", notifier.dealAlerts)
	}
	if notifier.sweepSummaries != 1 {
		t.Errorf("expected 1 sweep summary, got %d", notifier.sweepSummaries)
	}

	if broadcasted == nil {
		t.Error("sweep callback was not invoked")
	}
}

func TestRunPortfolioSweepEmptyPipeline(t *testing.T) {
	service := NewService(&mockOpportunityRepo{}, newMockSnapshotRepo(), pipeline.NewAdapter(nil), nil)

	if err := service.RunPortfolioSweep(); err != nil {
		t.Fatalf("sweep over empty pipeline failed: %v", err)
	}

	snapshot, _ := service.GetLatestSnapshot()
	if snapshot == nil {
		t.Fatal("expected a zeroed snapshot")
	}
	if snapshot.TotalOpportunities != 0 || snapshot.AverageValue != 0 {
		t.Errorf("expected zeroed aggregates, got %+v", snapshot)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
