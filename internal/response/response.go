package response

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/taskflow-dev/taskflow/internal/perrors"
)

type ErrorBody struct {
	Error   string               `json:"error"`
	Code    string               `json:"code"`
	Details []perrors.FieldError `json:"details,omitempty"`
}

// Error writes err as a JSON error response. Unexpected errors are logged and
// answered with an opaque message.
func Error(ctx *gin.Context, err error) {
	perr := perrors.From(err)

	if perr.Code == perrors.ErrCodeUnexpected {
		perr.Print(ctx.Request.Context(),
			slog.String("method", ctx.Request.Method),
			slog.String("path", ctx.FullPath()))

		ctx.AbortWithStatusJSON(perr.HttpStatus(), ErrorBody{
			Error: "Internal server error",
			Code:  perr.Code.Code,
		})
		return
	}

	ctx.AbortWithStatusJSON(perr.HttpStatus(), ErrorBody{
		Error:   perr.Message,
		Code:    perr.Code.Code,
		Details: perr.Fields,
	})
}
