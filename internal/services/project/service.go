package project

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/perrors"
	"github.com/taskflow-dev/taskflow/internal/policy"
	"github.com/taskflow-dev/taskflow/internal/repository"
	"github.com/taskflow-dev/taskflow/internal/services/activity"
	"github.com/taskflow-dev/taskflow/internal/types"
)

type CreateInput struct {
	Title       string
	Description *string
}

// UpdateInput is a partial patch; nil fields are left unchanged.
type UpdateInput struct {
	Title          *string
	Description    *string
	SlackWebhook   *string
	DiscordWebhook *string
}

type Detail struct {
	Project models.Project
	Members []types.MemberResponse
	Tasks   []models.Task
}

type Service struct {
	store    *repository.Store
	policy   *policy.Engine
	activity *activity.Recorder
}

func NewService(store *repository.Store, policy *policy.Engine, recorder *activity.Recorder) *Service {
	return &Service{store: store, policy: policy, activity: recorder}
}

// Create inserts the project and the creator's ADMIN membership in one
// transaction.
func (s *Service) Create(ctx context.Context, actorID string, input CreateInput) (*models.Project, error) {
	project := &models.Project{Title: input.Title}
	if input.Description != nil {
		project.Description = *input.Description
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users.GetByID(ctx, actorID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return perrors.NewErrNotFound("User not found")
			}
			return err
		}

		if err := tx.Projects.Create(ctx, project); err != nil {
			return err
		}

		return tx.Memberships.Create(ctx, &models.ProjectMembership{
			UserID:    actorID,
			ProjectID: project.ID,
			Role:      types.RoleAdmin,
		})
	})
	if err != nil {
		if errors.Is(err, perrors.ErrNotFound) {
			return nil, err
		}
		return nil, perrors.NewErrUnexpected("Failed to create project", err)
	}

	slog.InfoContext(ctx, "Project created", slog.String("project_id", project.ID), slog.String("actor_id", actorID))
	s.activity.Record(ctx, project.ID, actorID, activity.KindProjectCreated, map[string]any{"title": project.Title})

	return project, nil
}

func (s *Service) Update(ctx context.Context, actorID, projectID string, input UpdateInput) (*models.Project, error) {
	if _, err := s.get(ctx, projectID); err != nil {
		return nil, err
	}

	if err := s.policy.RequireAdmin(ctx, actorID, projectID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.SlackWebhook != nil {
		updates["slack_webhook"] = *input.SlackWebhook
	}
	if input.DiscordWebhook != nil {
		updates["discord_webhook"] = *input.DiscordWebhook
	}

	if len(updates) > 0 {
		if err := s.store.Projects.Update(ctx, projectID, updates); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, perrors.NewErrNotFound("Project not found")
			}
			return nil, perrors.NewErrUnexpected("Failed to update project", err)
		}

		s.activity.Record(ctx, projectID, actorID, activity.KindProjectUpdated, nil)
	}

	return s.get(ctx, projectID)
}

// Delete removes the project together with its tasks, memberships and
// activity.
func (s *Service) Delete(ctx context.Context, actorID, projectID string) error {
	if _, err := s.get(ctx, projectID); err != nil {
		return err
	}

	if err := s.policy.RequireAdmin(ctx, actorID, projectID); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Tasks.DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		if err := tx.Memberships.DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		if err := tx.Activities.DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		return tx.Projects.Delete(ctx, projectID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return perrors.NewErrNotFound("Project not found")
		}
		return perrors.NewErrUnexpected("Failed to delete project", err)
	}

	slog.InfoContext(ctx, "Project deleted", slog.String("project_id", projectID), slog.String("actor_id", actorID))
	s.activity.Notify(projectID, activity.KindProjectDeleted)

	return nil
}

// List returns every project. It does not filter by membership.
func (s *Service) List(ctx context.Context) ([]models.Project, error) {
	projects, err := s.store.Projects.List(ctx)
	if err != nil {
		return nil, perrors.NewErrUnexpected("Failed to retrieve projects", err)
	}
	return projects, nil
}

// Detail returns the project with its members and tasks. Members only.
func (s *Service) Detail(ctx context.Context, actorID, projectID string) (*Detail, error) {
	project, err := s.get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireMember(ctx, actorID, projectID); err != nil {
		return nil, err
	}

	memberships, err := s.store.Memberships.ListByProject(ctx, projectID)
	if err != nil {
		return nil, perrors.NewErrUnexpected("Failed to retrieve project members", err)
	}

	tasks, err := s.store.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, perrors.NewErrUnexpected("Failed to retrieve project tasks", err)
	}

	detail := &Detail{
		Project: *project,
		Members: make([]types.MemberResponse, 0, len(memberships)),
		Tasks:   tasks,
	}
	for _, m := range memberships {
		detail.Members = append(detail.Members, types.MemberResponse{
			ID:    m.UserID,
			Name:  m.User.Name,
			Email: m.User.Email,
			Role:  m.Role,
		})
	}

	return detail, nil
}

// ListForUser returns the projects the user is a member of.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.Project, error) {
	if _, err := s.store.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, perrors.NewErrNotFound("User not found")
		}
		return nil, perrors.NewErrUnexpected("Failed to retrieve user", err)
	}

	projects, err := s.store.Projects.ListByMember(ctx, userID)
	if err != nil {
		return nil, perrors.NewErrUnexpected("Failed to retrieve projects", err)
	}
	return projects, nil
}

// Activity returns the project's most recent activity. Members only.
func (s *Service) Activity(ctx context.Context, actorID, projectID string, limit int) ([]models.Activity, error) {
	if _, err := s.get(ctx, projectID); err != nil {
		return nil, err
	}

	if err := s.policy.RequireMember(ctx, actorID, projectID); err != nil {
		return nil, err
	}

	entries, err := s.activity.List(ctx, projectID, limit)
	if err != nil {
		return nil, perrors.NewErrUnexpected("Failed to retrieve activity", err)
	}
	return entries, nil
}

// Subscribe checks that the actor may receive the project's live updates.
func (s *Service) Subscribe(ctx context.Context, actorID, projectID string) error {
	if _, err := s.get(ctx, projectID); err != nil {
		return err
	}
	return s.policy.RequireMember(ctx, actorID, projectID)
}

func (s *Service) get(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := s.store.Projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, perrors.NewErrNotFound("Project not found")
		}
		return nil, perrors.NewErrUnexpected("Failed to retrieve project", err)
	}
	return project, nil
}
