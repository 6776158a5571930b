package auth

import "time"

// WildcardModel grants a role access to every registered route id.
const WildcardModel = "*"

// AdminUser is a back-office identity. Superusers bypass permission checks
// entirely.
type AdminUser struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	IsSuperuser  bool
	LastLogin    time.Time
	CreatedAt    time.Time
}

// Role grants access to a set of route ids, or to all of them via the
// wildcard entry.
type Role struct {
	ID               int64
	Name             string
	AccessibleModels []string
}

// HasWildcard reports whether the role grants access to every model.
func (r Role) HasWildcard() bool {
	for _, m := range r.AccessibleModels {
		if m == WildcardModel {
			return true
		}
	}
	return false
}

// Grants reports whether the role grants access to the given route id.
func (r Role) Grants(routeID string) bool {
	for _, m := range r.AccessibleModels {
		if m == WildcardModel || m == routeID {
			return true
		}
	}
	return false
}

// ResolvedUser pairs an identity with the roles loaded for the current
// request. Roles are always re-read from the user_roles join at resolve
// time; nothing is cached across requests and no shared type is patched.
type ResolvedUser struct {
	Identity AdminUser
	Roles    []Role
}
