package repository

import (
	"context"
	"fmt"

	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
	"gorm.io/gorm"
)

type MembershipRepo struct {
	db *gorm.DB
}

// Create inserts the membership. A second row for the same (user, project)
// fails with ErrDuplicate.
func (r *MembershipRepo) Create(ctx context.Context, membership *models.ProjectMembership) error {
	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return fmt.Errorf("failed to create membership: %w", translate(err))
	}
	return nil
}

func (r *MembershipRepo) Get(ctx context.Context, projectID, userID string) (*models.ProjectMembership, error) {
	var membership models.ProjectMembership
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&membership).Error
	if err != nil {
		return nil, translate(err)
	}
	return &membership, nil
}

func (r *MembershipRepo) UpdateRole(ctx context.Context, projectID, userID string, role types.Role) error {
	res := r.db.WithContext(ctx).
		Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role)
	if res.Error != nil {
		return fmt.Errorf("failed to update role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MembershipRepo) Delete(ctx context.Context, projectID, userID string) error {
	res := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMembership{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete membership: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByProject returns the project's memberships with their users loaded.
func (r *MembershipRepo) ListByProject(ctx context.Context, projectID string) ([]models.ProjectMembership, error) {
	var memberships []models.ProjectMembership
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at").
		Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, nil
}

func (r *MembershipRepo) DeleteByProject(ctx context.Context, projectID string) error {
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.ProjectMembership{}).Error; err != nil {
		return fmt.Errorf("failed to delete project memberships: %w", err)
	}
	return nil
}

func (r *MembershipRepo) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.ProjectMembership{}).Error; err != nil {
		return fmt.Errorf("failed to delete user memberships: %w", err)
	}
	return nil
}
