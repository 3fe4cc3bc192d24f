package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/perrors"
	"github.com/taskflow-dev/taskflow/internal/response"
	"github.com/taskflow-dev/taskflow/internal/types"
)

type AuthenticatedUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

const TokenCookie = "token"

type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

type UserLookup interface {
	Get(ctx context.Context, userID string) (*models.User, error)
}

// Auth resolves the caller from the Authorization header ("Bearer <token>" or
// the bare token) or, failing that, the token cookie.
func Auth(tokens TokenVerifier, users UserLookup) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := tokenFromRequest(ctx)
		if token == "" {
			response.Error(ctx, perrors.NewErrUnauthorized("Unauthorized"))
			return
		}

		userID, err := tokens.VerifyToken(token)
		if err != nil {
			response.Error(ctx, perrors.NewErrUnauthorized("Invalid token"))
			return
		}

		user, err := users.Get(ctx.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, perrors.ErrNotFound) {
				response.Error(ctx, perrors.NewErrUnauthorized("Unauthorized"))
				return
			}
			response.Error(ctx, err)
			return
		}

		ctx.Set(types.ContextUserKey, AuthenticatedUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		})
		ctx.Next()
	}
}

func tokenFromRequest(ctx *gin.Context) string {
	if header := strings.TrimSpace(ctx.GetHeader("Authorization")); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	if cookie, err := ctx.Cookie(TokenCookie); err == nil {
		return cookie
	}

	return ""
}
