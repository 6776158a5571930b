package rbac_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JiaLiangChen99/robyn-admin/internal/auth"
	"github.com/JiaLiangChen99/robyn-admin/internal/rbac"
)

type stubRoles struct {
	roles []auth.Role
	err   error
	calls int
}

func (s *stubRoles) RolesFor(ctx context.Context, userID int64) ([]auth.Role, error) {
	s.calls++
	return s.roles, s.err
}

func user(id int64, super bool) *auth.ResolvedUser {
	return &auth.ResolvedUser{Identity: auth.AdminUser{ID: id, Username: "u", IsSuperuser: super}}
}

func TestAuthorizeAbsentUserDenied(t *testing.T) {
	engine := rbac.NewEngine(&stubRoles{}, nil)
	assert.False(t, engine.Authorize(context.Background(), nil, "UserAdmin", rbac.ActionView))
}

func TestAuthorizeSuperuserAllowsEverything(t *testing.T) {
	src := &stubRoles{err: errors.New("must not be called")}
	engine := rbac.NewEngine(src, nil)

	for _, action := range []rbac.Action{rbac.ActionView, rbac.ActionAdd, rbac.ActionEdit, rbac.ActionDelete} {
		assert.True(t, engine.Authorize(context.Background(), user(1, true), "NeverRegistered", action))
	}
	assert.Zero(t, src.calls, "superuser check must not hit the role source")
}

func TestAuthorizeWildcardRole(t *testing.T) {
	src := &stubRoles{roles: []auth.Role{{Name: "root", AccessibleModels: []string{auth.WildcardModel}}}}
	engine := rbac.NewEngine(src, nil)

	assert.True(t, engine.Authorize(context.Background(), user(2, false), "AnyAdmin", rbac.ActionDelete))
	assert.True(t, engine.Authorize(context.Background(), user(2, false), "OtherAdmin", rbac.ActionView))
}

func TestAuthorizeExplicitSet(t *testing.T) {
	src := &stubRoles{roles: []auth.Role{{Name: "ops", AccessibleModels: []string{"UserAdmin", "RoleAdmin"}}}}
	engine := rbac.NewEngine(src, nil)

	assert.True(t, engine.Authorize(context.Background(), user(2, false), "UserAdmin", rbac.ActionEdit))
	assert.False(t, engine.Authorize(context.Background(), user(2, false), "SecretAdmin", rbac.ActionView))
}

func TestAuthorizeNoRolesDenied(t *testing.T) {
	engine := rbac.NewEngine(&stubRoles{}, nil)
	assert.False(t, engine.Authorize(context.Background(), user(2, false), "UserAdmin", rbac.ActionView))
}

func TestAuthorizeLookupFailureFailsClosed(t *testing.T) {
	src := &stubRoles{err: errors.New("db down")}
	engine := rbac.NewEngine(src, nil)

	assert.False(t, engine.Authorize(context.Background(), user(2, false), "UserAdmin", rbac.ActionView))
}

func TestAuthorizeQueriesFreshPerCheck(t *testing.T) {
	src := &stubRoles{roles: []auth.Role{{Name: "ops", AccessibleModels: []string{"UserAdmin"}}}}
	engine := rbac.NewEngine(src, nil)

	engine.Authorize(context.Background(), user(2, false), "UserAdmin", rbac.ActionView)
	engine.Authorize(context.Background(), user(2, false), "UserAdmin", rbac.ActionView)
	assert.Equal(t, 2, src.calls)
}
