package task

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

// Notifier delivers task events to a project's outbound integrations.
type Notifier interface {
	TaskAssigned(ctx context.Context, project models.Project, task models.Task, assignee models.User) error
	TaskCompleted(ctx context.Context, project models.Project, task models.Task) error
}

type CreateInput struct {
	ProjectID    string
	Title        string
	Description  *string
	Status       types.TaskStatus
	AssignedToID *string
}

// UpdateInput is a partial patch; nil fields are left unchanged.
type UpdateInput struct {
	Title        *string
	Description  *string
	Status       *types.TaskStatus
	AssignedToID *string
}

type Service struct {
	store    *repository.Store
	policy   *policy.Engine
	activity *activity.Recorder
	notifier Notifier
}

// NewService builds the task service. notifier may be nil.
func NewService(store *repository.Store, policy *policy.Engine, recorder *activity.Recorder, notifier Notifier) *Service {
	return &Service{store: store, policy: policy, activity: recorder, notifier: notifier}
}

func (s *Service) Create(ctx context.Context, actorID string, input CreateInput) (*models.Task, error) {
	project, err := s.project(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireAdmin(ctx, actorID, project.ID); err != nil {
		return nil, err
	}

	var assignee *models.User
	if input.AssignedToID != nil {
		if assignee, err = s.assignable(ctx, project.ID, *input.AssignedToID); err != nil {
			return nil, err
		}
	}

	status := input.Status
	if status == "" {
		status = types.TaskStatusTodo
	}
	if !status.Valid() {
		return nil, invalidStatus()
	}

	task := &models.Task{
		ProjectID:    project.ID,
		Title:        input.Title,
		Status:       status,
		AssignedToID: input.AssignedToID,
	}
	if input.Description != nil {
		task.Description = *input.Description
	}

	if err := s.store.Tasks.Create(ctx, task); err != nil {
		return nil, perrors.NewErrUnexpected("Failed to create task", err)
	}

	slog.InfoContext(ctx, "Task created",
		slog.String("task_id", task.ID),
		slog.String("project_id", project.ID),
		slog.String("actor_id", actorID))

	s.activity.Record(ctx, project.ID, actorID, activity.KindTaskCreated, map[string]any{
		"task_id": task.ID,
		"title":   task.Title,
	})

	if assignee != nil {
		s.notifyAssigned(ctx, *project, *task, *assignee)
	}

	return task, nil
}

// Update applies the patch. Any status may move to any other status.
func (s *Service) Update(ctx context.Context, actorID, taskID string, input UpdateInput) (*models.Task, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireAdmin(ctx, actorID, task.ProjectID); err != nil {
		return nil, err
	}

	var assignee *models.User
	if input.AssignedToID != nil {
		if assignee, err = s.assignable(ctx, task.ProjectID, *input.AssignedToID); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, invalidStatus()
		}
		updates["status"] = *input.Status
	}
	if assignee != nil {
		updates["assigned_to_id"] = assignee.ID
	}

	if len(updates) == 0 {
		return task, nil
	}

	if err := s.store.Tasks.Update(ctx, taskID, updates); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, perrors.NewErrNotFound("Task not found")
		}
		return nil, perrors.NewErrUnexpected("Failed to update task", err)
	}

	updated, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	completed := updated.Status == types.TaskStatusDone && task.Status != types.TaskStatusDone
	reassigned := assignee != nil && (task.AssignedToID == nil || *task.AssignedToID != assignee.ID)

	kind := activity.KindTaskUpdated
	if completed {
		kind = activity.KindTaskCompleted
	}
	s.activity.Record(ctx, updated.ProjectID, actorID, kind, map[string]any{
		"task_id": updated.ID,
		"status":  updated.Status,
	})

	if completed || reassigned {
		project, err := s.project(ctx, updated.ProjectID)
		if err != nil {
			return updated, nil
		}
		if completed {
			s.notifyCompleted(ctx, *project, *updated)
		}
		if reassigned {
			s.notifyAssigned(ctx, *project, *updated, *assignee)
		}
	}

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actorID, taskID string) error {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return err
	}

	if err := s.policy.RequireAdmin(ctx, actorID, task.ProjectID); err != nil {
		return err
	}

	if err := s.store.Tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return perrors.NewErrNotFound("Task not found")
		}
		return perrors.NewErrUnexpected("Failed to delete task", err)
	}

	slog.InfoContext(ctx, "Task deleted", slog.String("task_id", taskID), slog.String("actor_id", actorID))
	s.activity.Record(ctx, task.ProjectID, actorID, activity.KindTaskDeleted, map[string]any{
		"task_id": taskID,
		"title":   task.Title,
	})

	return nil
}

// Assign points the task at userID, who must be a member of the task's project.
func (s *Service) Assign(ctx context.Context, actorID, taskID, userID string) (*models.Task, error) {
	task, err := s.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.RequireAdmin(ctx, actorID, task.ProjectID); err != nil {
		return nil, err
	}

	assignee, err := s.assignable(ctx, task.ProjectID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Tasks.Update(ctx, taskID, map[string]interface{}{"assigned_to_id": userID}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, perrors.NewErrNotFound("Task not found")
		}
		return nil, perrors.NewErrUnexpected("Failed to assign task", err)
	}
	task.AssignedToID = &userID

	slog.InfoContext(ctx, "Task assigned",
		slog.String("task_id", taskID),
		slog.String("user_id", userID),
		slog.String("actor_id", actorID))

	s.activity.Record(ctx, task.ProjectID, actorID, activity.KindTaskAssigned, map[string]any{
		"task_id": taskID,
		"user_id": userID,
	})

	if project, err := s.project(ctx, task.ProjectID); err == nil {
		s.notifyAssigned(ctx, *project, *task, *assignee)
	}

	return task, nil
}

// Get returns the task. Any authenticated user may read it.
func (s *Service) Get(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.store.Tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, perrors.NewErrNotFound("Task not found")
		}
		return nil, perrors.NewErrUnexpected("Failed to retrieve task", err)
	}
	return task, nil
}

func (s *Service) ListByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	if _, err := s.project(ctx, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.store.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, perrors.NewErrUnexpected("Failed to retrieve tasks", err)
	}
	return tasks, nil
}

func (s *Service) ListByAssignee(ctx context.Context, userID string) ([]models.Task, error) {
	if _, err := s.store.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, perrors.NewErrNotFound("User not found")
		}
		return nil, perrors.NewErrUnexpected("Failed to retrieve user", err)
	}

	tasks, err := s.store.Tasks.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, perrors.NewErrUnexpected("Failed to retrieve tasks", err)
	}
	return tasks, nil
}

func (s *Service) project(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := s.store.Projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, perrors.NewErrNotFound("Project not found")
		}
		return nil, perrors.NewErrUnexpected("Failed to retrieve project", err)
	}
	return project, nil
}

// assignable returns the user if they are a current member of the project.
func (s *Service) assignable(ctx context.Context, projectID, userID string) (*models.User, error) {
	membership, err := s.store.Memberships.Get(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, perrors.NewErrNotAMember("User is not a member of this project")
		}
		return nil, perrors.NewErrUnexpected("Failed to retrieve membership", err)
	}

	user, err := s.store.Users.GetByID(ctx, membership.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, perrors.NewErrNotAMember("User is not a member of this project")
		}
		return nil, perrors.NewErrUnexpected("Failed to retrieve user", err)
	}
	return user, nil
}

func (s *Service) notifyAssigned(ctx context.Context, project models.Project, task models.Task, assignee models.User) {
	if s.notifier == nil || !hasWebhook(project) {
		return
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.TaskAssigned(ctx, project, task, assignee); err != nil {
			slog.WarnContext(ctx, "Failed to send task assignment notification",
				slog.String("task_id", task.ID),
				slog.Any("error", err))
		}
	}()
}

func (s *Service) notifyCompleted(ctx context.Context, project models.Project, task models.Task) {
	if s.notifier == nil || !hasWebhook(project) {
		return
	}

	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.notifier.TaskCompleted(ctx, project, task); err != nil {
			slog.WarnContext(ctx, "Failed to send task completion notification",
				slog.String("task_id", task.ID),
				slog.Any("error", err))
		}
	}()
}

func hasWebhook(project models.Project) bool {
	return project.SlackWebhook != "" || project.DiscordWebhook != ""
}

func invalidStatus() error {
	return perrors.NewErrInvalidInput("Invalid data", perrors.FieldError{
		Field:   "status",
		Message: "status must be one of TODO, IN_PROGRESS, BLOCKED, DONE",
	})
}
