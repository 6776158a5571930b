// Package rbac decides whether a resolved user may act on a registered
// route id.
package rbac

import (
	"context"
	"log/slog"

	"github.com/JiaLiangChen99/robyn-admin/internal/auth"
)

// Action is the operation being authorized. Access is currently granted at
// model level only: the action is accepted and recorded, but does not
// differentiate within a model. This reproduces the ported contract and is
// a documented simplification, not a fine-grained ACL.
type Action string

// Known actions.
const (
	ActionView   Action = "view"
	ActionAdd    Action = "add"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// RoleSource yields the live role set for a user. Implementations must
// query the user_roles join on every call; the engine never caches grants
// across checks.
type RoleSource interface {
	RolesFor(ctx context.Context, userID int64) ([]auth.Role, error)
}

// Engine evaluates model-level access.
type Engine struct {
	roles  RoleSource
	logger *slog.Logger
}

// NewEngine constructs an Engine.
func NewEngine(roles RoleSource, logger *slog.Logger) *Engine {
	return &Engine{roles: roles, logger: logger}
}

// Authorize reports whether user may perform action on routeID.
// An absent user is denied, a superuser is allowed unconditionally, and any
// role lookup failure resolves to deny, never allow.
func (e *Engine) Authorize(ctx context.Context, user *auth.ResolvedUser, routeID string, action Action) bool {
	if user == nil {
		return false
	}
	if user.Identity.IsSuperuser {
		return true
	}
	roles, err := e.roles.RolesFor(ctx, user.Identity.ID)
	if err != nil {
		if e.logger != nil {
			e.logger.Error("authorize role lookup",
				slog.Int64("user_id", user.Identity.ID),
				slog.String("route_id", routeID),
				slog.String("action", string(action)),
				slog.Any("error", err))
		}
		return false
	}
	for _, role := range roles {
		if role.Grants(routeID) {
			return true
		}
	}
	return false
}
