package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/internal/middleware"
	"github.com/taskflow-dev/taskflow/internal/response"
	"github.com/taskflow-dev/taskflow/internal/services/user"
	"github.com/taskflow-dev/taskflow/internal/validation"
)

type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *Handler) SignUp(ctx *gin.Context) {
	body, err := validation.Decode[SignUpRequest](ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	newUser, token, err := h.users.SignUp(ctx.Request.Context(), user.SignUpInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		response.Error(ctx, err)
		return
	}

	h.setTokenCookie(ctx, token)

	ctx.JSON(http.StatusCreated, gin.H{
		"user":  toUserResponse(newUser),
		"token": token,
	})
}

func (h *Handler) SignIn(ctx *gin.Context) {
	body, err := validation.Decode[SignInRequest](ctx)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	existingUser, token, err := h.users.SignIn(ctx.Request.Context(), body.Email, body.Password)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	h.setTokenCookie(ctx, token)

	ctx.JSON(http.StatusOK, gin.H{
		"user":  toUserResponse(existingUser),
		"token": token,
	})
}

func (h *Handler) SignOut(ctx *gin.Context) {
	h.clearTokenCookie(ctx)
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) setTokenCookie(ctx *gin.Context, token string) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

func (h *Handler) clearTokenCookie(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}
