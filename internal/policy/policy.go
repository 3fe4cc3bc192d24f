// Package policy decides whether an actor may act on a project. Every
// decision is derived from the actor's membership row and nothing else.
package policy

import (
	"context"

	"github.com/taskflow-dev/taskflow/internal/perrors"
	"github.com/taskflow-dev/taskflow/internal/types"
)

// RoleLookup resolves the role a user holds in a project. ok is false when no
// membership exists.
type RoleLookup interface {
	GetRole(ctx context.Context, projectID, userID string) (role types.Role, ok bool, err error)
}

type Engine struct {
	roles RoleLookup
}

func New(roles RoleLookup) *Engine {
	return &Engine{roles: roles}
}

// RequireMember allows any member of the project.
func (e *Engine) RequireMember(ctx context.Context, actorID, projectID string) error {
	_, ok, err := e.roles.GetRole(ctx, projectID, actorID)
	if err != nil {
		return perrors.NewErrUnexpected("Failed to resolve project role", err)
	}
	if !ok {
		return perrors.NewErrForbidden("Forbidden")
	}
	return nil
}

// RequireAdmin allows only members whose role can manage the project.
func (e *Engine) RequireAdmin(ctx context.Context, actorID, projectID string) error {
	role, ok, err := e.roles.GetRole(ctx, projectID, actorID)
	if err != nil {
		return perrors.NewErrUnexpected("Failed to resolve project role", err)
	}
	if !ok || !role.CanManage() {
		return perrors.NewErrForbidden("Forbidden")
	}
	return nil
}

// RequireSelfOrAdmin allows the actor to act on themself, and admins to act on
// anyone in the project.
func (e *Engine) RequireSelfOrAdmin(ctx context.Context, actorID, targetID, projectID string) error {
	if actorID == targetID {
		return nil
	}
	return e.RequireAdmin(ctx, actorID, projectID)
}
