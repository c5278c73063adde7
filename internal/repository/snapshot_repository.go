package repository

import (
	"errors"
	"time"

	"fulqrun-crm/internal/models"

	"gorm.io/gorm"
)

type SnapshotRepository interface {
	GetByDate(date time.Time) (*models.PipelineSnapshot, error)
	GetOrCreate(date time.Time) (*models.PipelineSnapshot, error)
	Update(snapshot *models.PipelineSnapshot) error
	ListRange(from, to time.Time) ([]*models.PipelineSnapshot, error)
	Latest() (*models.PipelineSnapshot, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) GetByDate(date time.Time) (*models.PipelineSnapshot, error) {
	var snapshot models.PipelineSnapshot
	err := r.db.Where("date = ?", truncateDay(date)).First(&snapshot).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

func (r *snapshotRepository) GetOrCreate(date time.Time) (*models.PipelineSnapshot, error) {
	snapshot, err := r.GetByDate(date)
	if err != nil {
		return nil, err
	}
	if snapshot != nil {
		return snapshot, nil
	}

	snapshot = &models.PipelineSnapshot{Date: truncateDay(date)}
	if err := r.db.Create(snapshot).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *snapshotRepository) Update(snapshot *models.PipelineSnapshot) error {
	return r.db.Save(snapshot).Error
}

func (r *snapshotRepository) ListRange(from, to time.Time) ([]*models.PipelineSnapshot, error) {
	var snapshots []*models.PipelineSnapshot
	err := r.db.
		Where("date >= ? AND date <= ?", truncateDay(from), truncateDay(to)).
		Order("date ASC").
		Find(&snapshots).Error

	return snapshots, err
}

func (r *snapshotRepository) Latest() (*models.PipelineSnapshot, error) {
	var snapshot models.PipelineSnapshot
	err := r.db.Order("date DESC").First(&snapshot).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
