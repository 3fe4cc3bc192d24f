package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/internal/response"
	"github.com/taskflow-dev/taskflow/internal/services/project"
	"github.com/taskflow-dev/taskflow/internal/utils"
	"github.com/taskflow-dev/taskflow/internal/validation"
)

type CreateProjectRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description" binding:"omitempty,min=1"`
}

type UpdateProjectRequest struct {
	Title          *string `json:"title" binding:"omitempty,min=1"`
	Description    *string `json:"description" binding:"omitempty,min=1"`
	SlackWebhook   *string `json:"slackWebhook" binding:"omitempty,https_url"`
	DiscordWebhook *string `json:"discordWebhook" binding:"omitempty,https_url"`
}

func (h *Handler) CreateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	body, err := validation.Decode[CreateProjectRequest](ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	created, err := h.projects.Create(ctx.Request.Context(), userID, project.CreateInput{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Project successfully created",
		"project": toProjectSettingsResponse(created),
	})
}

func (h *Handler) ListProjects(ctx *gin.Context) {
	projects, err := h.projects.List(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"projects": toProjectResponses(projects)})
}

func (h *Handler) GetProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	projectID, err := utils.GetProjectID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	detail, err := h.projects.Detail(ctx.Request.Context(), userID, projectID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"project": toProjectResponse(&detail.Project),
		"members": detail.Members,
		"tasks":   toTaskResponses(detail.Tasks),
	})
}

func (h *Handler) UpdateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	projectID, err := utils.GetProjectID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	body, err := validation.Decode[UpdateProjectRequest](ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	updated, err := h.projects.Update(ctx.Request.Context(), userID, projectID, project.UpdateInput{
		Title:          body.Title,
		Description:    body.Description,
		SlackWebhook:   body.SlackWebhook,
		DiscordWebhook: body.DiscordWebhook,
	})
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Project successfully updated",
		"project": toProjectSettingsResponse(updated),
	})
}

func (h *Handler) DeleteProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	projectID, err := utils.GetProjectID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	if err := h.projects.Delete(ctx.Request.Context(), userID, projectID); err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Project successfully deleted"})
}

func (h *Handler) GetProjectTasks(ctx *gin.Context) {
	projectID, err := utils.GetProjectID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	tasks, err := h.tasks.ListByProject(ctx.Request.Context(), projectID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"tasks": toTaskResponses(tasks)})
}
