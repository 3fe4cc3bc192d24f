package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow-dev/taskflow/internal/auth"
	"github.com/taskflow-dev/taskflow/internal/handlers"
	"github.com/taskflow-dev/taskflow/internal/health"
	"github.com/taskflow-dev/taskflow/internal/realtime"
	"github.com/taskflow-dev/taskflow/internal/repository"
	"github.com/taskflow-dev/taskflow/internal/router"
	"github.com/taskflow-dev/taskflow/internal/services/activity"
	"github.com/taskflow-dev/taskflow/internal/services/membership"
	"github.com/taskflow-dev/taskflow/internal/services/project"
	"github.com/taskflow-dev/taskflow/internal/services/task"
	"github.com/taskflow-dev/taskflow/internal/services/user"
	"github.com/taskflow-dev/taskflow/internal/testutil"
)

type app struct {
	t      *testing.T
	engine *gin.Engine
}

func newApp(t *testing.T) *app {
	t.Helper()
	return newAppWithOrigins(t, []string{"http://localhost:5173"})
}

func newAppWithOrigins(t *testing.T, origins []string) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb := testutil.NewDB(t)
	store := repository.New(gdb)
	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	hub := realtime.NewHub(nil)
	recorder := activity.NewRecorder(store, hub)
	ledger := membership.NewLedger(store, recorder)
	users := user.NewService(store, issuer)

	h := handlers.New(
		users,
		ledger,
		project.NewService(store, ledger.Policy(), recorder),
		task.NewService(store, ledger.Policy(), recorder, nil),
		hub,
		handlers.CookieConfig{MaxAge: time.Hour},
	)

	return &app{t: t, engine: router.NewRouter(h, issuer, users, health.NewDatabase(gdb, 0), origins)}
}

func (a *app) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	out := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

// signUp registers a user and returns its id and token.
func (a *app) signUp(name, email string) (string, string) {
	a.t.Helper()

	status, body := a.do(http.MethodPost, "/api/auth/sign-up", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "12345678",
	})
	require.Equal(a.t, http.StatusCreated, status, body)

	return body["user"].(map[string]any)["id"].(string), body["token"].(string)
}

func TestPing(t *testing.T) {
	a := newApp(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestCORSDefaultsWithoutOrigins(t *testing.T) {
	var a *app
	require.NotPanics(t, func() { a = newAppWithOrigins(t, nil) })

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w = httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	a := newApp(t)

	status, body := a.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestAuthFlow(t *testing.T) {
	a := newApp(t)
	id, _ := a.signUp("Alice", "alice@example.com")

	status, body := a.do(http.MethodPost, "/api/auth/sign-up", "", map[string]string{
		"name": "Again", "email": "alice@example.com", "password": "12345678",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "email_taken", body["code"])

	status, body = a.do(http.MethodPost, "/api/auth/sign-up", "", map[string]string{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_input", body["code"])
	assert.NotEmpty(t, body["details"])

	status, _ = a.do(http.MethodPost, "/api/auth/sign-in", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = a.do(http.MethodPost, "/api/auth/sign-in", "", map[string]string{
		"email": "alice@example.com", "password": "12345678",
	})
	require.Equal(t, http.StatusOK, status)
	token := body["token"].(string)

	status, body = a.do(http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, body["user"].(map[string]any)["id"])

	status, _ = a.do(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMembershipScenario(t *testing.T) {
	a := newApp(t)
	aliceID, alice := a.signUp("Alice", "alice@example.com")
	bobID, bob := a.signUp("Bob", "bob@example.com")

	status, body := a.do(http.MethodPost, "/api/projects", alice, map[string]string{"title": "Roadmap"})
	require.Equal(t, http.StatusCreated, status, body)
	projectID := body["project"].(map[string]any)["id"].(string)

	status, body = a.do(http.MethodGet, "/api/projects/"+projectID, alice, nil)
	require.Equal(t, http.StatusOK, status)
	members := body["members"].([]any)
	require.Len(t, members, 1)
	assert.Equal(t, aliceID, members[0].(map[string]any)["id"])
	assert.Equal(t, "ADMIN", members[0].(map[string]any)["role"])

	status, _ = a.do(http.MethodGet, "/api/projects/"+projectID, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = a.do(http.MethodPost, "/api/projects/"+projectID+"/users", alice, map[string]string{"userId": bobID})
	require.Equal(t, http.StatusCreated, status)

	status, body = a.do(http.MethodPost, "/api/projects/"+projectID+"/users", alice, map[string]string{"userId": bobID})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "already_member", body["code"])

	status, body = a.do(http.MethodGet, "/api/projects/"+projectID, bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["members"].([]any), 2)

	status, _ = a.do(http.MethodDelete, "/api/projects/"+projectID, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = a.do(http.MethodPatch, "/api/projects/"+projectID+"/users/"+aliceID+"/role", bob, map[string]string{"role": "USER"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "protected_role", body["code"])

	status, body = a.do(http.MethodPost, "/api/tasks", alice, map[string]string{"projectId": projectID, "title": "Ship"})
	require.Equal(t, http.StatusCreated, status, body)
	taskID := body["task"].(map[string]any)["id"].(string)
	assert.Equal(t, "TODO", body["task"].(map[string]any)["status"])

	status, body = a.do(http.MethodPatch, "/api/tasks/"+taskID+"/assign-to", alice, map[string]string{"userId": bobID})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, bobID, body["task"].(map[string]any)["assignedToId"])

	status, _ = a.do(http.MethodDelete, "/api/projects/"+projectID+"/users/"+bobID, alice, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = a.do(http.MethodGet, "/api/tasks/"+taskID, alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, bobID, body["task"].(map[string]any)["assignedToId"])

	status, body = a.do(http.MethodPatch, "/api/tasks/"+taskID+"/assign-to", alice, map[string]string{"userId": bobID})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "not_a_member", body["code"])

	status, body = a.do(http.MethodGet, "/api/projects/"+projectID+"/activity", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["activity"])

	status, _ = a.do(http.MethodDelete, "/api/projects/"+projectID, alice, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = a.do(http.MethodGet, "/api/projects/"+projectID+"/tasks", alice, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["code"])
}

func TestProjectWebhookSettings(t *testing.T) {
	a := newApp(t)
	_, alice := a.signUp("Alice", "alice@example.com")
	_, bob := a.signUp("Bob", "bob@example.com")

	status, body := a.do(http.MethodPost, "/api/projects", alice, map[string]string{"title": "Roadmap"})
	require.Equal(t, http.StatusCreated, status, body)
	projectID := body["project"].(map[string]any)["id"].(string)

	for _, target := range []string{"http://hooks.slack.com/x", "https://169.254.169.254/latest/meta-data", "https://127.0.0.1:6379"} {
		status, body = a.do(http.MethodPatch, "/api/projects/"+projectID, alice, map[string]string{"slackWebhook": target})
		assert.Equal(t, http.StatusBadRequest, status, target)
		assert.Equal(t, "invalid_input", body["code"], target)
	}

	hook := "https://hooks.slack.com/services/T000/B000/XXX"
	status, body = a.do(http.MethodPatch, "/api/projects/"+projectID, alice, map[string]string{"slackWebhook": hook})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, hook, body["project"].(map[string]any)["slackWebhook"])

	status, body = a.do(http.MethodGet, "/api/projects", bob, nil)
	require.Equal(t, http.StatusOK, status)
	listed := body["projects"].([]any)
	require.Len(t, listed, 1)
	assert.NotContains(t, listed[0].(map[string]any), "slackWebhook")
	assert.NotContains(t, listed[0].(map[string]any), "discordWebhook")

	status, body = a.do(http.MethodGet, "/api/projects/"+projectID, alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body["project"].(map[string]any), "slackWebhook")
}

func TestUserEndpoints(t *testing.T) {
	a := newApp(t)
	aliceID, alice := a.signUp("Alice", "alice@example.com")
	a.signUp("Bob", "bob@example.com")

	status, body := a.do(http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["users"].([]any), 2)

	status, body = a.do(http.MethodPatch, "/api/users", alice, map[string]string{"name": "Alice L"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Alice L", body["user"].(map[string]any)["name"])

	status, _ = a.do(http.MethodGet, "/api/users/missing/projects", alice, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = a.do(http.MethodGet, "/api/users/"+aliceID+"/tasks", alice, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["tasks"])

	status, _ = a.do(http.MethodDelete, "/api/users", alice, map[string]string{"password": "wrong-password"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = a.do(http.MethodDelete, "/api/users", alice, map[string]string{"password": "12345678"})
	require.Equal(t, http.StatusOK, status)

	status, _ = a.do(http.MethodGet, "/api/users/me", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
