package task_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/perrors"
	"github.com/taskflow-dev/taskflow/internal/repository"
	"github.com/taskflow-dev/taskflow/internal/services/activity"
	"github.com/taskflow-dev/taskflow/internal/services/membership"
	"github.com/taskflow-dev/taskflow/internal/services/task"
	"github.com/taskflow-dev/taskflow/internal/testutil"
	"github.com/taskflow-dev/taskflow/internal/types"
	"gorm.io/gorm"
)

type fakeNotifier struct {
	mu        sync.Mutex
	assigned  []string
	completed []string
}

func (n *fakeNotifier) TaskAssigned(_ context.Context, _ models.Project, t models.Task, assignee models.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assigned = append(n.assigned, t.ID+":"+assignee.ID)
	return nil
}

func (n *fakeNotifier) TaskCompleted(_ context.Context, _ models.Project, t models.Task) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, t.ID)
	return nil
}

func (n *fakeNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.assigned), len(n.completed)
}

type fixture struct {
	db       *gorm.DB
	store    *repository.Store
	ledger   *membership.Ledger
	tasks    *task.Service
	notifier *fakeNotifier
	project  *models.Project
	admin    *models.User
	member   *models.User
}

func setup(t *testing.T) *fixture {
	t.Helper()

	gdb := testutil.NewDB(t)
	store := repository.New(gdb)
	recorder := activity.NewRecorder(store, nil)
	ledger := membership.NewLedger(store, recorder)
	notifier := &fakeNotifier{}

	admin := testutil.CreateUser(t, gdb, "alice")
	member := testutil.CreateUser(t, gdb, "bob")
	project := &models.Project{Title: "Roadmap", SlackWebhook: "http://hooks.invalid/slack"}
	require.NoError(t, store.Projects.Create(context.Background(), project))
	testutil.CreateMembership(t, gdb, project.ID, admin.ID, types.RoleAdmin)
	testutil.CreateMembership(t, gdb, project.ID, member.ID, types.RoleUser)

	return &fixture{
		db:       gdb,
		store:    store,
		ledger:   ledger,
		tasks:    task.NewService(store, ledger.Policy(), recorder, notifier),
		notifier: notifier,
		project:  project,
		admin:    admin,
		member:   member,
	}
}

func ptr[T any](v T) *T { return &v }

func TestCreateDefaultsToTodo(t *testing.T) {
	f := setup(t)

	created, err := f.tasks.Create(context.Background(), f.admin.ID, task.CreateInput{
		ProjectID: f.project.ID,
		Title:     "Ship",
	})
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusTodo, created.Status)
	assert.Nil(t, created.AssignedToID)
}

func TestCreateRules(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	outsider := testutil.CreateUser(t, f.db, "eve")

	t.Run("missing project", func(t *testing.T) {
		_, err := f.tasks.Create(ctx, f.admin.ID, task.CreateInput{ProjectID: "missing", Title: "x"})
		assert.ErrorIs(t, err, perrors.ErrNotFound)
	})

	t.Run("non-admin", func(t *testing.T) {
		_, err := f.tasks.Create(ctx, f.member.ID, task.CreateInput{ProjectID: f.project.ID, Title: "x"})
		assert.ErrorIs(t, err, perrors.ErrForbidden)
	})

	t.Run("assignee outside project", func(t *testing.T) {
		_, err := f.tasks.Create(ctx, f.admin.ID, task.CreateInput{
			ProjectID:    f.project.ID,
			Title:        "x",
			AssignedToID: &outsider.ID,
		})
		assert.ErrorIs(t, err, perrors.ErrNotAMember)
	})

	t.Run("assignee in project", func(t *testing.T) {
		created, err := f.tasks.Create(ctx, f.admin.ID, task.CreateInput{
			ProjectID:    f.project.ID,
			Title:        "x",
			Status:       types.TaskStatusInProgress,
			AssignedToID: &f.member.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, created.AssignedToID)
		assert.Equal(t, f.member.ID, *created.AssignedToID)
		assert.Equal(t, types.TaskStatusInProgress, created.Status)
	})

	tasks, err := f.tasks.ListByProject(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestAssign(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	outsider := testutil.CreateUser(t, f.db, "eve")

	created, err := f.tasks.Create(ctx, f.admin.ID, task.CreateInput{ProjectID: f.project.ID, Title: "Ship"})
	require.NoError(t, err)

	_, err = f.tasks.Assign(ctx, f.admin.ID, created.ID, outsider.ID)
	assert.ErrorIs(t, err, perrors.ErrNotAMember)

	_, err = f.tasks.Assign(ctx, f.member.ID, created.ID, f.member.ID)
	assert.ErrorIs(t, err, perrors.ErrForbidden)

	_, err = f.tasks.Assign(ctx, f.admin.ID, "missing", f.member.ID)
	assert.ErrorIs(t, err, perrors.ErrNotFound)

	assigned, err := f.tasks.Assign(ctx, f.admin.ID, created.ID, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, f.member.ID, *assigned.AssignedToID)

	require.Eventually(t, func() bool {
		a, _ := f.notifier.counts()
		return a == 1
	}, time.Second, 10*time.Millisecond)

	mine, err := f.tasks.ListByAssignee(ctx, f.member.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	outsider := testutil.CreateUser(t, f.db, "eve")

	created, err := f.tasks.Create(ctx, f.admin.ID, task.CreateInput{ProjectID: f.project.ID, Title: "Ship"})
	require.NoError(t, err)

	_, err = f.tasks.Update(ctx, f.admin.ID, created.ID, task.UpdateInput{AssignedToID: &outsider.ID})
	assert.ErrorIs(t, err, perrors.ErrNotAMember)

	_, err = f.tasks.Update(ctx, f.member.ID, created.ID, task.UpdateInput{Title: ptr("Renamed")})
	assert.ErrorIs(t, err, perrors.ErrForbidden)

	_, err = f.tasks.Update(ctx, f.admin.ID, created.ID, task.UpdateInput{Status: ptr(types.TaskStatus("LATER"))})
	assert.ErrorIs(t, err, perrors.ErrInvalidInput)

	updated, err := f.tasks.Update(ctx, f.admin.ID, created.ID, task.UpdateInput{
		Title:  ptr("Renamed"),
		Status: ptr(types.TaskStatusDone),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, types.TaskStatusDone, updated.Status)

	reopened, err := f.tasks.Update(ctx, f.admin.ID, created.ID, task.UpdateInput{Status: ptr(types.TaskStatusTodo)})
	require.NoError(t, err)
	assert.Equal(t, types.TaskStatusTodo, reopened.Status)

	require.Eventually(t, func() bool {
		_, c := f.notifier.counts()
		return c == 1
	}, time.Second, 10*time.Millisecond)

	entries, err := f.store.Activities.ListByProject(ctx, f.project.ID, 10)
	require.NoError(t, err)
	kinds := make([]string, 0, len(entries))
	for _, e := range entries {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, activity.KindTaskCompleted)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	created, err := f.tasks.Create(ctx, f.admin.ID, task.CreateInput{ProjectID: f.project.ID, Title: "Ship"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.tasks.Delete(ctx, f.member.ID, created.ID), perrors.ErrForbidden)
	require.NoError(t, f.tasks.Delete(ctx, f.admin.ID, created.ID))

	_, err = f.tasks.Get(ctx, created.ID)
	assert.ErrorIs(t, err, perrors.ErrNotFound)
	assert.ErrorIs(t, f.tasks.Delete(ctx, f.admin.ID, created.ID), perrors.ErrNotFound)
}

func TestRemovedMemberKeepsAssignment(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	created, err := f.tasks.Create(ctx, f.admin.ID, task.CreateInput{
		ProjectID:    f.project.ID,
		Title:        "Ship",
		AssignedToID: &f.member.ID,
	})
	require.NoError(t, err)

	require.NoError(t, f.ledger.RemoveMember(ctx, f.admin.ID, f.project.ID, f.member.ID))

	orphan, err := f.tasks.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, orphan.AssignedToID)
	assert.Equal(t, f.member.ID, *orphan.AssignedToID)

	_, err = f.tasks.Assign(ctx, f.admin.ID, created.ID, f.member.ID)
	assert.ErrorIs(t, err, perrors.ErrNotAMember)
}
