package repository

import (
	"context"
	"fmt"

	"github.com/taskflow-dev/taskflow/internal/models"
	"gorm.io/gorm"
)

type ActivityRepo struct {
	db *gorm.DB
}

func (r *ActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// ListByProject returns the most recent activity first.
func (r *ActivityRepo) ListByProject(ctx context.Context, projectID string, limit int) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return activities, nil
}

func (r *ActivityRepo) DeleteByProject(ctx context.Context, projectID string) error {
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.Activity{}).Error; err != nil {
		return fmt.Errorf("failed to delete project activity: %w", err)
	}
	return nil
}
