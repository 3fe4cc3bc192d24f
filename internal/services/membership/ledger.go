// Package membership owns the (user, project, role) ledger that every
// authorization decision is read from.
package membership

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taskflow-dev/taskflow/internal/models"
	"github.com/taskflow-dev/taskflow/internal/perrors"
	"github.com/taskflow-dev/taskflow/internal/policy"
	"github.com/taskflow-dev/taskflow/internal/repository"
	"github.com/taskflow-dev/taskflow/internal/services/activity"
	"github.com/taskflow-dev/taskflow/internal/types"
)

type Ledger struct {
	store    *repository.Store
	policy   *policy.Engine
	activity *activity.Recorder
}

func NewLedger(store *repository.Store, recorder *activity.Recorder) *Ledger {
	l := &Ledger{store: store, activity: recorder}
	l.policy = policy.New(l)
	return l
}

// Policy returns the authorization engine backed by this ledger.
func (l *Ledger) Policy() *policy.Engine {
	return l.policy
}

// GetRole implements policy.RoleLookup.
func (l *Ledger) GetRole(ctx context.Context, projectID, userID string) (types.Role, bool, error) {
	membership, err := l.store.Memberships.Get(ctx, projectID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return membership.Role, true, nil
}

// AddMember adds userID to the project. An empty role means USER.
func (l *Ledger) AddMember(ctx context.Context, actorID, projectID, userID string, role types.Role) (*models.ProjectMembership, error) {
	if role == "" {
		role = types.RoleUser
	}
	if !role.Valid() {
		return nil, perrors.NewErrInvalidInput("Invalid data", perrors.FieldError{Field: "role", Message: "role must be one of ADMIN, USER"})
	}

	if err := l.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	if err := l.policy.RequireAdmin(ctx, actorID, projectID); err != nil {
		return nil, err
	}

	if _, err := l.store.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, perrors.NewErrNotFound("User not found")
		}
		return nil, perrors.NewErrUnexpected("Failed to retrieve user", err)
	}

	if _, exists, err := l.GetRole(ctx, projectID, userID); err != nil {
		return nil, perrors.NewErrUnexpected("Failed to retrieve membership", err)
	} else if exists {
		return nil, perrors.NewErrAlreadyMember("User already in project")
	}

	membership := &models.ProjectMembership{
		UserID:    userID,
		ProjectID: projectID,
		Role:      role,
	}

	if err := l.store.Memberships.Create(ctx, membership); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, perrors.NewErrAlreadyMember("User already in project")
		}
		return nil, perrors.NewErrUnexpected("Failed to add user to project", err)
	}

	slog.InfoContext(ctx, "Member added",
		slog.String("project_id", projectID),
		slog.String("user_id", userID),
		slog.String("role", role.String()))

	l.activity.Record(ctx, projectID, actorID, activity.KindMemberAdded, map[string]any{
		"user_id": userID,
		"role":    role,
	})

	return membership, nil
}

// RemoveMember deletes the membership. Members may remove themselves; anyone
// else needs ADMIN. Tasks assigned to the removed user keep their assignee.
func (l *Ledger) RemoveMember(ctx context.Context, actorID, projectID, userID string) error {
	if err := l.requireProject(ctx, projectID); err != nil {
		return err
	}

	if _, err := l.requireMembership(ctx, projectID, userID); err != nil {
		return err
	}

	if err := l.policy.RequireSelfOrAdmin(ctx, actorID, userID, projectID); err != nil {
		return err
	}

	if err := l.store.Memberships.Delete(ctx, projectID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return perrors.NewErrNotFound("Membership not found")
		}
		return perrors.NewErrUnexpected("Failed to remove user from project", err)
	}

	slog.InfoContext(ctx, "Member removed",
		slog.String("project_id", projectID),
		slog.String("user_id", userID))

	l.activity.Record(ctx, projectID, actorID, activity.KindMemberRemoved, map[string]any{
		"user_id": userID,
	})

	return nil
}

// SetRole changes a member's role. An ADMIN's role can only be changed by
// that ADMIN.
func (l *Ledger) SetRole(ctx context.Context, actorID, projectID, userID string, role types.Role) error {
	if !role.Valid() {
		return perrors.NewErrInvalidInput("Invalid data", perrors.FieldError{Field: "role", Message: "role must be one of ADMIN, USER"})
	}

	if err := l.requireProject(ctx, projectID); err != nil {
		return err
	}

	membership, err := l.requireMembership(ctx, projectID, userID)
	if err != nil {
		return err
	}

	if membership.Role == types.RoleAdmin && actorID != userID {
		return perrors.NewErrProtectedRole("You can not change ADMIN role")
	}

	if err := l.policy.RequireAdmin(ctx, actorID, projectID); err != nil {
		return err
	}

	if err := l.store.Memberships.UpdateRole(ctx, projectID, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return perrors.NewErrNotFound("Membership not found")
		}
		return perrors.NewErrUnexpected("Failed to change role", err)
	}

	slog.InfoContext(ctx, "Member role changed",
		slog.String("project_id", projectID),
		slog.String("user_id", userID),
		slog.String("from", membership.Role.String()),
		slog.String("to", role.String()))

	l.activity.Record(ctx, projectID, actorID, activity.KindRoleChanged, map[string]any{
		"user_id": userID,
		"from":    membership.Role,
		"to":      role,
	})

	return nil
}

// ListMembers returns the project's members with their user details.
func (l *Ledger) ListMembers(ctx context.Context, projectID string) ([]types.MemberResponse, error) {
	memberships, err := l.store.Memberships.ListByProject(ctx, projectID)
	if err != nil {
		return nil, perrors.NewErrUnexpected("Failed to list project members", err)
	}

	members := make([]types.MemberResponse, 0, len(memberships))
	for _, m := range memberships {
		members = append(members, types.MemberResponse{
			ID:    m.UserID,
			Name:  m.User.Name,
			Email: m.User.Email,
			Role:  m.Role,
		})
	}

	return members, nil
}

func (l *Ledger) requireProject(ctx context.Context, projectID string) error {
	if _, err := l.store.Projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return perrors.NewErrNotFound("Project not found")
		}
		return perrors.NewErrUnexpected("Failed to retrieve project", err)
	}
	return nil
}

func (l *Ledger) requireMembership(ctx context.Context, projectID, userID string) (*models.ProjectMembership, error) {
	membership, err := l.store.Memberships.Get(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, perrors.NewErrNotFound("Membership not found")
		}
		return nil, perrors.NewErrUnexpected("Failed to retrieve membership", err)
	}
	return membership, nil
}
