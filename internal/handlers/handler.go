package handlers

import (
	"encoding/json"
	"time"

	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/realtime"
	"github.com/taskflow-dev/taskflow/internal/services/membership"
	"github.com/taskflow-dev/taskflow/internal/services/project"
	"github.com/taskflow-dev/taskflow/internal/services/task"
	"github.com/taskflow-dev/taskflow/internal/services/user"
	"github.com/taskflow-dev/taskflow/internal/types"
)

type CookieConfig struct {
	Domain string
	MaxAge time.Duration
}

type Handler struct {
	users    *user.Service
	members  *membership.Ledger
	projects *project.Service
	tasks    *task.Service
	hub      *realtime.Hub
	cookie   CookieConfig
}

func New(users *user.Service, members *membership.Ledger, projects *project.Service, tasks *task.Service, hub *realtime.Hub, cookie CookieConfig) *Handler {
	return &Handler{
		users:    users,
		members:  members,
		projects: projects,
		tasks:    tasks,
		hub:      hub,
		cookie:   cookie,
	}
}

type ProjectResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectSettingsResponse carries the webhook targets and is only returned
// to project admins.
type ProjectSettingsResponse struct {
	ProjectResponse
	SlackWebhook   string `json:"slackWebhook"`
	DiscordWebhook string `json:"discordWebhook"`
}

type TaskResponse struct {
	ID           string           `json:"id"`
	ProjectID    string           `json:"projectId"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Status       types.TaskStatus `json:"status"`
	AssignedToID *string          `json:"assignedToId"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

type ActivityResponse struct {
	ID        string          `json:"id"`
	ActorID   string          `json:"actorId"`
	Kind      string          `json:"kind"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toUserResponse(u *models.User) types.UserResponse {
	return types.UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toUserResponses(users []models.User) []types.UserResponse {
	out := make([]types.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

func toProjectResponse(p *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProjectSettingsResponse(p *models.Project) ProjectSettingsResponse {
	return ProjectSettingsResponse{
		ProjectResponse: toProjectResponse(p),
		SlackWebhook:    p.SlackWebhook,
		DiscordWebhook:  p.DiscordWebhook,
	}
}

func toProjectResponses(projects []models.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, toProjectResponse(&projects[i]))
	}
	return out
}

func toTaskResponse(t *models.Task) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		ProjectID:    t.ProjectID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		AssignedToID: t.AssignedToID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func toTaskResponses(tasks []models.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}
	return out
}

func toActivityResponses(entries []models.Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ActivityResponse{
			ID:        e.ID,
			ActorID:   e.ActorID,
			Kind:      e.Kind,
			Details:   json.RawMessage(e.Details),
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
