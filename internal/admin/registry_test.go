package admin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryAssignsSuffixOnCollision(t *testing.T) {
	registry := NewRegistry()

	first := registry.Register(&Descriptor{Name: "ArticleAdmin", Model: "articles"})
	second := registry.Register(&Descriptor{Name: "ArticleAdmin", Model: "articles_archive"})
	third := registry.Register(&Descriptor{Name: "ArticleAdmin", Model: "articles_draft"})

	require.Equal(t, "ArticleAdmin", first)
	require.Equal(t, "ArticleAdmin1", second)
	require.Equal(t, "ArticleAdmin2", third)

	desc, ok := registry.Resolve("ArticleAdmin1")
	require.True(t, ok)
	require.Equal(t, "articles_archive", desc.Model)
	require.Equal(t, "ArticleAdmin1", desc.RouteID())
}

func TestRegistryResolveUnknown(t *testing.T) {
	registry := NewRegistry()
	_, ok := registry.Resolve("Nope")
	require.False(t, ok)
}

func TestRegistryForModel(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&Descriptor{Name: "A", Model: "articles"})
	registry.Register(&Descriptor{Name: "B", Model: "articles"})
	registry.Register(&Descriptor{Name: "C", Model: "comments"})

	descs := registry.ForModel("articles")
	require.Len(t, descs, 2)
	require.Empty(t, registry.ForModel("missing"))
}

func TestRegistryAllPreservesRegistrationOrder(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&Descriptor{Name: "B", Model: "b"})
	registry.Register(&Descriptor{Name: "A", Model: "a"})
	registry.Register(&Descriptor{Name: "C", Model: "c"})

	var got []string
	for _, d := range registry.All() {
		got = append(got, d.RouteID())
	}
	require.Equal(t, []string{"B", "A", "C"}, got)
}
