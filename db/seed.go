package db

import (
	"context"
	"fmt"

	"github.com/taskflow-dev/taskflow/internal/auth"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
	"gorm.io/gorm"
)

const SeedPassword = "12345678"

// Seed wipes the database and loads a demo admin, a regular user and one
// project with four tasks.
func Seed(ctx context.Context, db *gorm.DB) error {
	hash, err := auth.HashPassword(SeedPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Activity{}, &models.Task{}, &models.ProjectMembership{}, &models.Project{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}

		admin := &models.User{Name: "Admin User", Email: "admin@example.com", PasswordHash: hash}
		regular := &models.User{Name: "Regular User", Email: "user@example.com", PasswordHash: hash}
		if err := tx.Create(admin).Error; err != nil {
			return err
		}
		if err := tx.Create(regular).Error; err != nil {
			return err
		}

		project := &models.Project{Title: "Seed Project", Description: "Project for seeding tasks"}
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		memberships := []models.ProjectMembership{
			{UserID: admin.ID, ProjectID: project.ID, Role: types.RoleAdmin},
			{UserID: regular.ID, ProjectID: project.ID, Role: types.RoleUser},
		}
		if err := tx.Create(&memberships).Error; err != nil {
			return err
		}

		tasks := []models.Task{
			{
				ProjectID:    project.ID,
				Title:        "Setup project",
				Description:  "Initialize repository and install dependencies",
				Status:       types.TaskStatusTodo,
				AssignedToID: &admin.ID,
			},
			{
				ProjectID:    project.ID,
				Title:        "Create auth endpoints",
				Description:  "Sign-up and Sign-in endpoints",
				Status:       types.TaskStatusInProgress,
				AssignedToID: &regular.ID,
			},
			{
				ProjectID:   project.ID,
				Title:       "Create user CRUD",
				Description: "Endpoints to manage users",
				Status:      types.TaskStatusBlocked,
			},
			{
				ProjectID:    project.ID,
				Title:        "Write API documentation",
				Description:  "Document every endpoint",
				Status:       types.TaskStatusDone,
				AssignedToID: &admin.ID,
			},
		}

		return tx.Create(&tasks).Error
	})
}
