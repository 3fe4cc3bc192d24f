package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow-dev/taskflow/internal/perrors"
)

func serve(err error) (*httptest.ResponseRecorder, ErrorBody) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Error(ctx, err)

	var body ErrorBody
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{perrors.NewErrInvalidInput("Invalid data"), http.StatusBadRequest, "invalid_input"},
		{perrors.NewErrUnauthorized("Invalid token"), http.StatusUnauthorized, "unauthorized"},
		{perrors.NewErrForbidden("Forbidden"), http.StatusForbidden, "forbidden"},
		{perrors.NewErrNotFound("Project not found"), http.StatusNotFound, "not_found"},
		{perrors.NewErrAlreadyMember("User already in project"), http.StatusBadRequest, "already_member"},
		{perrors.NewErrNotAMember("not a member"), http.StatusBadRequest, "not_a_member"},
		{perrors.NewErrProtectedRole("You can not change ADMIN role"), http.StatusBadRequest, "protected_role"},
		{perrors.NewErrEmailTaken("Email already exists"), http.StatusBadRequest, "email_taken"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			w, body := serve(tc.err)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, perrors.From(tc.err).Message, body.Error)
		})
	}
}

func TestErrorHidesUnexpectedCause(t *testing.T) {
	w, body := serve(errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", body.Error)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestErrorIncludesFieldDetails(t *testing.T) {
	_, body := serve(perrors.NewErrInvalidInput("Invalid data", perrors.FieldError{Field: "title", Message: "title is required"}))

	require.Len(t, body.Details, 1)
	assert.Equal(t, "title", body.Details[0].Field)
}
