package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/internal/response"
	"github.com/taskflow-dev/taskflow/internal/services/task"
	"github.com/taskflow-dev/taskflow/internal/types"
	"github.com/taskflow-dev/taskflow/internal/utils"
	"github.com/taskflow-dev/taskflow/internal/validation"
)

type CreateTaskRequest struct {
	ProjectID    string           `json:"projectId" binding:"required"`
	Title        string           `json:"title" binding:"required"`
	Description  *string          `json:"description" binding:"omitempty,min=1"`
	Status       types.TaskStatus `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS BLOCKED DONE"`
	AssignedToID *string          `json:"assignedToId" binding:"omitempty,min=1"`
}

type UpdateTaskRequest struct {
	Title        *string           `json:"title" binding:"omitempty,min=1"`
	Description  *string           `json:"description" binding:"omitempty,min=1"`
	Status       *types.TaskStatus `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS BLOCKED DONE"`
	AssignedToID *string           `json:"assignedToId" binding:"omitempty,min=1"`
}

type AssignTaskRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *Handler) CreateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	body, err := validation.Decode[CreateTaskRequest](ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	created, err := h.tasks.Create(ctx.Request.Context(), userID, task.CreateInput{
		ProjectID:    body.ProjectID,
		Title:        body.Title,
		Description:  body.Description,
		Status:       body.Status,
		AssignedToID: body.AssignedToID,
	})
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Task successfully created",
		"task":    toTaskResponse(created),
	})
}

func (h *Handler) GetTask(ctx *gin.Context) {
	taskID, err := utils.GetTaskID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	found, err := h.tasks.Get(ctx.Request.Context(), taskID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"task": toTaskResponse(found)})
}

func (h *Handler) UpdateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	taskID, err := utils.GetTaskID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	body, err := validation.Decode[UpdateTaskRequest](ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	updated, err := h.tasks.Update(ctx.Request.Context(), userID, taskID, task.UpdateInput{
		Title:        body.Title,
		Description:  body.Description,
		Status:       body.Status,
		AssignedToID: body.AssignedToID,
	})
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Task successfully updated",
		"task":    toTaskResponse(updated),
	})
}

func (h *Handler) DeleteTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	taskID, err := utils.GetTaskID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	if err := h.tasks.Delete(ctx.Request.Context(), userID, taskID); err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task successfully deleted"})
}

func (h *Handler) AssignTask(ctx *gin.Context) {
	actorID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	taskID, err := utils.GetTaskID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	body, err := validation.Decode[AssignTaskRequest](ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	assigned, err := h.tasks.Assign(ctx.Request.Context(), actorID, taskID, body.UserID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Task successfully assigned",
		"task":    toTaskResponse(assigned),
	})
}
