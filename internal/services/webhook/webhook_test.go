package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/types"
)

type capture struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (c *capture) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		c.mu.Lock()
		c.bodies = append(c.bodies, body)
		c.mu.Unlock()
		w.WriteHeader(status)
	}
}

func TestTaskAssignedPostsToBothWebhooks(t *testing.T) {
	discord := &capture{}
	slack := &capture{}
	discordSrv := httptest.NewServer(discord.handler(http.StatusNoContent))
	defer discordSrv.Close()
	slackSrv := httptest.NewServer(slack.handler(http.StatusOK))
	defer slackSrv.Close()

	project := models.Project{Title: "Launch", DiscordWebhook: discordSrv.URL, SlackWebhook: slackSrv.URL}
	task := models.Task{Title: "Ship it", Status: types.TaskStatusInProgress}
	assignee := models.User{Name: "Bob"}

	err := NewNotifier(nil).TaskAssigned(context.Background(), project, task, assignee)
	require.NoError(t, err)

	require.Len(t, discord.bodies, 1)
	assert.Equal(t, Username, discord.bodies[0]["username"])
	require.Len(t, slack.bodies, 1)
	assert.Equal(t, ":clipboard: *Task assigned*", slack.bodies[0]["text"])
}

func TestTaskCompletedSkipsProjectsWithoutWebhooks(t *testing.T) {
	err := NewNotifier(nil).TaskCompleted(context.Background(), models.Project{Title: "Quiet"}, models.Task{Title: "Done"})
	assert.NoError(t, err)
}

func TestWebhookErrorStatus(t *testing.T) {
	slack := &capture{}
	srv := httptest.NewServer(slack.handler(http.StatusInternalServerError))
	defer srv.Close()

	project := models.Project{Title: "Launch", SlackWebhook: srv.URL}
	err := NewNotifier(srv.Client()).TaskCompleted(context.Background(), project, models.Task{Title: "Ship it"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slack")
	assert.Contains(t, err.Error(), "500")
}
