// Package activity keeps the per-project audit trail and fans each entry out
// to connected clients.
package activity

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/realtime"
	"github.com/taskflow-dev/taskflow/internal/repository"
	"gorm.io/datatypes"
)

const (
	KindProjectCreated = "project_created"
	KindProjectUpdated = "project_updated"
	KindProjectDeleted = "project_deleted"
	KindMemberAdded    = "member_added"
	KindMemberRemoved  = "member_removed"
	KindRoleChanged    = "role_changed"
	KindTaskCreated    = "task_created"
	KindTaskUpdated    = "task_updated"
	KindTaskCompleted  = "task_completed"
	KindTaskDeleted    = "task_deleted"
	KindTaskAssigned   = "task_assigned"
)

const DefaultLimit = 50

type Broadcaster interface {
	Broadcast(projectID string, msg realtime.Message)
}

type Recorder struct {
	store *repository.Store
	hub   Broadcaster
}

// NewRecorder builds a recorder. hub may be nil.
func NewRecorder(store *repository.Store, hub Broadcaster) *Recorder {
	return &Recorder{store: store, hub: hub}
}

// Record appends an entry to the project's trail and notifies its clients.
// The operation that produced the entry has already committed, so failures
// here are logged and not returned.
func (r *Recorder) Record(ctx context.Context, projectID, actorID, kind string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}

	payload, err := json.Marshal(details)
	if err != nil {
		slog.WarnContext(ctx, "Failed to encode activity details", slog.String("kind", kind), slog.Any("error", err))
		payload = []byte("{}")
	}

	entry := &models.Activity{
		ProjectID: projectID,
		ActorID:   actorID,
		Kind:      kind,
		Details:   datatypes.JSON(payload),
	}

	if err := r.store.Activities.Create(ctx, entry); err != nil {
		slog.WarnContext(ctx, "Failed to record activity",
			slog.String("project_id", projectID),
			slog.String("kind", kind),
			slog.Any("error", err))
	}

	r.Notify(projectID, kind)
}

// Notify pushes a refresh to the project's clients without persisting.
func (r *Recorder) Notify(projectID, kind string) {
	if r.hub == nil {
		return
	}

	r.hub.Broadcast(projectID, realtime.Message{
		Type:    "refresh",
		Message: "Project data updated",
		Kind:    kind,
	})
}

func (r *Recorder) List(ctx context.Context, projectID string, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	return r.store.Activities.ListByProject(ctx, projectID, limit)
}
