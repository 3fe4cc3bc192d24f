package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/internal/response"
	"github.com/taskflow-dev/taskflow/internal/types"
	"github.com/taskflow-dev/taskflow/internal/utils"
	"github.com/taskflow-dev/taskflow/internal/validation"
)

type AddMemberRequest struct {
	UserID string     `json:"userId" binding:"required"`
	Role   types.Role `json:"role" binding:"omitempty,oneof=ADMIN USER"`
}

type EditRoleRequest struct {
	Role types.Role `json:"role" binding:"required,oneof=ADMIN USER"`
}

func (h *Handler) AddMember(ctx *gin.Context) {
	actorID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	projectID, err := utils.GetProjectID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	body, err := validation.Decode[AddMemberRequest](ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	membership, err := h.members.AddMember(ctx.Request.Context(), actorID, projectID, body.UserID, body.Role)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User successfully added to project",
		"member": gin.H{
			"id":   membership.UserID,
			"role": membership.Role,
		},
	})
}

func (h *Handler) RemoveMember(ctx *gin.Context) {
	actorID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	projectID, userID, err := utils.GetProjectUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	if err := h.members.RemoveMember(ctx.Request.Context(), actorID, projectID, userID); err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User successfully removed from project"})
}

func (h *Handler) EditMemberRole(ctx *gin.Context) {
	actorID, err := utils.GetCurrentUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	projectID, userID, err := utils.GetProjectUserID(ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	body, err := validation.Decode[EditRoleRequest](ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	if err := h.members.SetRole(ctx.Request.Context(), actorID, projectID, userID, body.Role); err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Role successfully changed"})
}
