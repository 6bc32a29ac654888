package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bugtrack/internal/model"
)

// BugRepository defines persistence operations for bugs.
type BugRepository interface {
	Create(ctx context.Context, bug *model.Bug) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bug, error)
	List(ctx context.Context, reporterID *uuid.UUID) ([]model.Bug, error)
	Update(ctx context.Context, bug *model.Bug) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type bugRepository struct {
	db *gorm.DB
}

// NewBugRepository builds a GORM-backed repository.
func NewBugRepository(db *gorm.DB) BugRepository {
	return &bugRepository{db: db}
}

func (r *bugRepository) Create(ctx context.Context, bug *model.Bug) error {
	return r.db.WithContext(ctx).Create(bug).Error
}

func (r *bugRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Bug, error) {
	var bug model.Bug
	if err := r.db.WithContext(ctx).Preload("Reporter").First(&bug, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bug, nil
}

// List returns bugs newest-first with the reporter resolved inline. A non-nil
// reporterID restricts the result to that reporter's bugs.
func (r *bugRepository) List(ctx context.Context, reporterID *uuid.UUID) ([]model.Bug, error) {
	query := r.db.WithContext(ctx).Preload("Reporter").Order("created_at DESC")
	if reporterID != nil {
		query = query.Where("reporter_id = ?", *reporterID)
	}
	var bugs []model.Bug
	if err := query.Find(&bugs).Error; err != nil {
		return nil, err
	}
	return bugs, nil
}

func (r *bugRepository) Update(ctx context.Context, bug *model.Bug) error {
	return r.db.WithContext(ctx).Save(bug).Error
}

func (r *bugRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Bug{}, "id = ?", id).Error
}
