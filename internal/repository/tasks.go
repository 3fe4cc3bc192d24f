package repository

import (
	"context"
	"fmt"

	"github.com/taskflow-dev/taskflow/internal/models"
	"gorm.io/gorm"
)

type TaskRepo struct {
	db *gorm.DB
}

func (r *TaskRepo) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", translate(err))
	}
	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

func (r *TaskRepo) ListByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepo) ListByAssignee(ctx context.Context, userID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).Where("assigned_to_id = ?", userID).Order("created_at").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list assigned tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepo) DeleteByProject(ctx context.Context, projectID string) error {
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
		return fmt.Errorf("failed to delete project tasks: %w", err)
	}
	return nil
}

// Unassign clears every assignment that points at the user.
func (r *TaskRepo) Unassign(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("assigned_to_id = ?", userID).
		Update("assigned_to_id", nil).Error
	if err != nil {
		return fmt.Errorf("failed to unassign tasks: %w", err)
	}
	return nil
}
