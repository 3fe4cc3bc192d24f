package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/internal/middleware"
	"github.com/taskflow-dev/taskflow/internal/perrors"
	"github.com/taskflow-dev/taskflow/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (middleware.AuthenticatedUser, error) {
	user, exists := ctx.Get(types.ContextUserKey)
	if !exists {
		return middleware.AuthenticatedUser{}, perrors.NewErrUnauthorized("User not authenticated")
	}

	authenticatedUser, ok := user.(middleware.AuthenticatedUser)
	if !ok {
		return middleware.AuthenticatedUser{}, perrors.NewErrUnauthorized("User not authenticated")
	}

	return authenticatedUser, nil
}

func GetCurrentUserID(ctx *gin.Context) (string, error) {
	user, err := GetCurrentUser(ctx)
	if err != nil {
		return "", err
	}

	return user.ID, nil
}
