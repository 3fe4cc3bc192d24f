package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/internal/perrors"
)

func param(ctx *gin.Context, name, label string) (string, error) {
	value := strings.TrimSpace(ctx.Param(name))
	if value == "" {
		return "", perrors.NewErrInvalidInput(label+" is required",
			perrors.FieldError{Field: name, Message: name + " is required"})
	}
	return value, nil
}

func GetProjectID(ctx *gin.Context) (string, error) {
	return param(ctx, "project_id", "Project ID")
}

func GetTaskID(ctx *gin.Context) (string, error) {
	return param(ctx, "task_id", "Task ID")
}

func GetUserID(ctx *gin.Context) (string, error) {
	return param(ctx, "user_id", "User ID")
}

func GetProjectUserID(ctx *gin.Context) (string, string, error) {
	projectID, err := GetProjectID(ctx)
	if err != nil {
		return "", "", err
	}

	userID, err := GetUserID(ctx)
	if err != nil {
		return "", "", err
	}

	return projectID, userID, nil
}

// GetLimit reads the optional ?limit= query value. Missing or malformed
// values yield 0.
func GetLimit(ctx *gin.Context) int {
	limit, err := strconv.Atoi(ctx.Query("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
