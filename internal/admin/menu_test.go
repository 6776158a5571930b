package admin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMenuTreeNestsChildren(t *testing.T) {
	m := NewMenuManager()
	m.Register(MenuItem{Name: "system", Label: "System"})
	m.Register(MenuItem{Name: "users", Label: "Users", Parent: "system"})
	m.Register(MenuItem{Name: "roles", Label: "Roles", Parent: "system"})
	m.Register(MenuItem{Name: "content", Label: "Content"})

	tree := m.Tree()
	require.Len(t, tree, 2)
	require.Equal(t, "system", tree[0].Name)
	require.Len(t, tree[0].Children, 2)
	require.Equal(t, "users", tree[0].Children[0].Name)
	require.Equal(t, "roles", tree[0].Children[1].Name)
	require.Equal(t, "content", tree[1].Name)
}

func TestMenuTreeUnknownParentBecomesRoot(t *testing.T) {
	m := NewMenuManager()
	m.Register(MenuItem{Name: "orphan", Label: "Orphan", Parent: "missing"})

	tree := m.Tree()
	require.Len(t, tree, 1)
	require.Equal(t, "orphan", tree[0].Name)
	require.Empty(t, tree[0].Children)
}
