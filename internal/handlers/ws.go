package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/internal/response"
	"github.com/taskflow-dev/taskflow/internal/utils"
)

func (h *Handler) GetProjectActivity(ctx *gin.Context) {
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

	entries, err := h.projects.Activity(ctx.Request.Context(), userID, projectID, utils.GetLimit(ctx))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"activity": toActivityResponses(entries)})
}

// WebSocket streams refresh events for a project the caller belongs to.
func (h *Handler) WebSocket(ctx *gin.Context) {
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

	if err := h.projects.Subscribe(ctx.Request.Context(), userID, projectID); err != nil {
		response.Error(ctx, err)
		return
	}

	h.hub.Serve(ctx.Writer, ctx.Request, projectID)
}
