package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/internal/response"
	"github.com/taskflow-dev/taskflow/internal/services/user"
	"github.com/taskflow-dev/taskflow/internal/utils"
	"github.com/taskflow-dev/taskflow/internal/validation"
)

type UpdateUserRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email" binding:"omitempty,email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"omitempty,min=8"`
}

type DeleteUserRequest struct {
	Password string `json:"password" binding:"required"`
}

func (h *Handler) ListUsers(ctx *gin.Context) {
	users, err := h.users.List(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"users": toUserResponses(users)})
}

func (h *Handler) Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": currentUser})
}

func (h *Handler) GetUser(ctx *gin.Context) {
	userID, err := utils.GetUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	found, err := h.users.Get(ctx.Request.Context(), userID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": toUserResponse(found)})
}

func (h *Handler) UpdateUser(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	body, err := validation.Decode[UpdateUserRequest](ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	updated, err := h.users.Update(ctx.Request.Context(), userID, user.UpdateInput{
		Name:            body.Name,
		Email:           body.Email,
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
	})
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"user":    toUserResponse(updated),
	})
}

func (h *Handler) DeleteUser(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	body, err := validation.Decode[DeleteUserRequest](ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	if err := h.users.Delete(ctx.Request.Context(), userID, body.Password); err != nil {
		response.Error(ctx, err)
		return
	}

	h.clearTokenCookie(ctx)

	ctx.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

func (h *Handler) GetUserProjects(ctx *gin.Context) {
	userID, err := utils.GetUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	projects, err := h.projects.ListForUser(ctx.Request.Context(), userID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"projects": toProjectResponses(projects)})
}

func (h *Handler) GetUserTasks(ctx *gin.Context) {
	userID, err := utils.GetUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	tasks, err := h.tasks.ListByAssignee(ctx.Request.Context(), userID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"tasks": toTaskResponses(tasks)})
}
