package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/taskflow-dev/taskflow/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username  string         `json:"username"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Embeds    []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorBlue  = 3447003 // #3498DB - Task assigned
	ColorGreen = 65280   // #00FF00 - Task completed

	Username = "Taskflow"
)

// Notifier posts task events to the Slack and Discord webhooks configured on a
// project. Projects without webhooks are skipped.
type Notifier struct {
	client *http.Client
}

func NewNotifier(client *http.Client) *Notifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Notifier{client: client}
}

func (n *Notifier) TaskAssigned(ctx context.Context, project models.Project, task models.Task, assignee models.User) error {
	if project.DiscordWebhook != "" {
		payload := DiscordWebhookRequest{
			Username: Username,
			Embeds: []DiscordEmbed{
				{
					Title:       "Task assigned",
					Description: fmt.Sprintf("**%s** was assigned to %s.", task.Title, assignee.Name),
					Color:       ColorBlue,
					Fields: []DiscordWebhookField{
						{Name: "Task", Value: task.Title, Inline: true},
						{Name: "Assignee", Value: assignee.Name, Inline: true},
						{Name: "Status", Value: string(task.Status), Inline: true},
					},
					Footer:    &DiscordFooter{Text: fmt.Sprintf("Project: %s", project.Title)},
					Timestamp: time.Now().Format(time.RFC3339),
				},
			},
		}
		if err := n.post(ctx, project.DiscordWebhook, payload); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	}

	if project.SlackWebhook != "" {
		payload := SlackWebhookRequest{
			Username:  Username,
			IconEmoji: ":clipboard:",
			Text:      ":clipboard: *Task assigned*",
			Attachments: []SlackAttachment{
				{
					Color: "#3498DB",
					Title: task.Title,
					Text:  fmt.Sprintf("Assigned to %s", assignee.Name),
					Fields: []SlackField{
						{Title: "Assignee", Value: assignee.Name, Short: true},
						{Title: "Status", Value: string(task.Status), Short: true},
					},
					Footer:    fmt.Sprintf("Project: %s", project.Title),
					Timestamp: time.Now().Unix(),
				},
			},
		}
		if err := n.post(ctx, project.SlackWebhook, payload); err != nil {
			return fmt.Errorf("slack: %w", err)
		}
	}

	return nil
}

func (n *Notifier) TaskCompleted(ctx context.Context, project models.Project, task models.Task) error {
	if project.DiscordWebhook != "" {
		payload := DiscordWebhookRequest{
			Username: Username,
			Embeds: []DiscordEmbed{
				{
					Title:       "Task completed",
					Description: fmt.Sprintf("**%s** is done.", task.Title),
					Color:       ColorGreen,
					Fields: []DiscordWebhookField{
						{Name: "Task", Value: task.Title, Inline: true},
					},
					Footer:    &DiscordFooter{Text: fmt.Sprintf("Project: %s", project.Title)},
					Timestamp: time.Now().Format(time.RFC3339),
				},
			},
		}
		if err := n.post(ctx, project.DiscordWebhook, payload); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	}

	if project.SlackWebhook != "" {
		payload := SlackWebhookRequest{
			Username:  Username,
			IconEmoji: ":white_check_mark:",
			Text:      ":white_check_mark: *Task completed*",
			Attachments: []SlackAttachment{
				{
					Color:     "good",
					Title:     task.Title,
					Text:      task.Description,
					Footer:    fmt.Sprintf("Project: %s", project.Title),
					Timestamp: time.Now().Unix(),
				},
			},
		}
		if err := n.post(ctx, project.SlackWebhook, payload); err != nil {
			return fmt.Errorf("slack: %w", err)
		}
	}

	return nil
}

func (n *Notifier) post(ctx context.Context, webhookURL string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
