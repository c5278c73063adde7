package repository

import (
	"errors"
	"time"

	"fulqrun-crm/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrDuplicateOpportunity повертається при конфлікті external_id
var ErrDuplicateOpportunity = errors.New("opportunity with this external_id already exists")

type OpportunityRepository interface {
	Create(opp *models.Opportunity) error
	GetByID(id uint) (*models.Opportunity, error)
	GetByExternalID(externalID string) (*models.Opportunity, error)
	Update(opp *models.Opportunity) error
	Delete(id uint) error
	ListOpen(limit, offset int) ([]*models.Opportunity, error)
	ListByFilters(filters OpportunityFilters) ([]*models.Opportunity, error)
	CountOpen() (int64, error)
	AdvanceStage(id uint, stage string, enteredAt time.Time) error
	SaveMEDDPICC(record *models.MEDDPICC) error
	AddContact(contact *models.Contact) error
	AddActivity(activity *models.Activity) error
}

type OpportunityFilters struct {
	Stage    string
	Account  string
	MinValue float64
	Open     bool
	Limit    int
	Offset   int
}

type opportunityRepository struct {
	db *gorm.DB
}

func NewOpportunityRepository(db *gorm.DB) OpportunityRepository {
	return &opportunityRepository{db: db}
}

func (r *opportunityRepository) Create(opp *models.Opportunity) error {
	if opp.ExternalID == "" {
		opp.ExternalID = uuid.NewString()
	}
	if opp.Stage == "" {
		opp.Stage = models.StageProspect
	}
	if opp.StageEnteredAt.IsZero() {
		opp.StageEnteredAt = time.Now().UTC()
	}
	if opp.MEDDPICC == nil {
		// Порожній MEDDPICC створюється разом з угодою
		opp.MEDDPICC = &models.MEDDPICC{}
	}

	err := r.db.Create(opp).Error
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateOpportunity
		}
		return err
	}
	return nil
}

func (r *opportunityRepository) GetByID(id uint) (*models.Opportunity, error) {
	var opp models.Opportunity
	err := r.db.
		Preload("MEDDPICC").
		Preload("Contacts").
		Preload("Activities").
		First(&opp, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &opp, nil
}

func (r *opportunityRepository) GetByExternalID(externalID string) (*models.Opportunity, error) {
	var opp models.Opportunity
	err := r.db.
		Preload("MEDDPICC").
		Preload("Contacts").
		Preload("Activities").
		Where("external_id = ?", externalID).
		First(&opp).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &opp, nil
}

func (r *opportunityRepository) Update(opp *models.Opportunity) error {
	return r.db.Save(opp).Error
}

func (r *opportunityRepository) Delete(id uint) error {
	return r.db.Delete(&models.Opportunity{}, id).Error
}

func (r *opportunityRepository) ListOpen(limit, offset int) ([]*models.Opportunity, error) {
	var opps []*models.Opportunity
	err := r.db.
		Preload("MEDDPICC").
		Preload("Contacts").
		Preload("Activities").
		Where("stage NOT IN ?", []string{models.StageClosedWon, models.StageClosedLost}).
		Order("value DESC").
		Limit(limit).
		Offset(offset).
		Find(&opps).Error

	return opps, err
}

func (r *opportunityRepository) ListByFilters(filters OpportunityFilters) ([]*models.Opportunity, error) {
	query := r.db.
		Preload("MEDDPICC").
		Preload("Contacts").
		Preload("Activities").
		Model(&models.Opportunity{})

	if filters.Stage != "" {
		query = query.Where("stage = ?", filters.Stage)
	}

	if filters.Account != "" {
		query = query.Where("account = ?", filters.Account)
	}

	if filters.MinValue > 0 {
		query = query.Where("value >= ?", filters.MinValue)
	}

	if filters.Open {
		query = query.Where("stage NOT IN ?", []string{models.StageClosedWon, models.StageClosedLost})
	}

	var opps []*models.Opportunity
	err := query.
		Order("value DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&opps).Error

	return opps, err
}

func (r *opportunityRepository) CountOpen() (int64, error) {
	var count int64
	err := r.db.Model(&models.Opportunity{}).
		Where("stage NOT IN ?", []string{models.StageClosedWon, models.StageClosedLost}).
		Count(&count).Error

	return count, err
}

// AdvanceStage застосовує зміну стадії та фіксує час входу в неї.
// Рішення про просування приймає движок, repository лише персистить.
func (r *opportunityRepository) AdvanceStage(id uint, stage string, enteredAt time.Time) error {
	updates := map[string]interface{}{
		"stage":            stage,
		"stage_entered_at": enteredAt,
	}

	if stage == models.StageClosedWon || stage == models.StageClosedLost {
		updates["actual_close_date"] = enteredAt
	}

	return r.db.Model(&models.Opportunity{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *opportunityRepository) SaveMEDDPICC(record *models.MEDDPICC) error {
	return r.db.Save(record).Error
}

func (r *opportunityRepository) AddContact(contact *models.Contact) error {
	return r.db.Create(contact).Error
}

func (r *opportunityRepository) AddActivity(activity *models.Activity) error {
	if err := r.db.Create(activity).Error; err != nil {
		return err
	}

	// Активність оновлює last_activity_at угоди
	return r.db.Model(&models.Opportunity{}).
		Where("id = ?", activity.OpportunityID).
		Update("last_activity_at", activity.OccurredAt).Error
}
