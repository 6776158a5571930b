package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JiaLiangChen99/robyn-admin/internal/platform/httpx"
	"github.com/JiaLiangChen99/robyn-admin/internal/records"
)

func inlineFixture() (*records.MemoryRepository, *Descriptor) {
	repo := records.NewMemoryRepository()
	repo.Seed("articles",
		records.Record{"title": "parent one"},
		records.Record{"title": "parent two"},
	)
	repo.Seed("comments",
		records.Record{"article_id": int64(1), "body": "first", "rank": int64(2)},
		records.Record{"article_id": int64(1), "body": "second", "rank": int64(1)},
		records.Record{"article_id": int64(2), "body": "other", "rank": int64(3)},
	)
	desc := &Descriptor{
		Name:  "ArticleAdmin",
		Model: "articles",
		Inlines: []*InlineDescriptor{
			{
				Model:       "comments",
				VerboseName: "Comments",
				ForeignKey:  "article_id",
				TableFields: []Field{
					{Name: "body", Label: "Body"},
					{Name: "rank", Label: "Rank", Sortable: true},
				},
			},
		},
	}
	return repo, desc
}

func TestResolveInlineScopesToParent(t *testing.T) {
	repo, desc := inlineFixture()
	svc := NewService(repo, nil, nil, nil)

	result, err := svc.ResolveInline(context.Background(), desc, "comments", "1", "", "")
	require.NoError(t, err)
	require.Equal(t, 2, result.Total)
	require.Len(t, result.Data, 2)
	require.Len(t, result.Fields, 2)
	require.Equal(t, "body", result.Fields[0].Name)
	bodies := []string{result.Data[0].Data["body"].(string), result.Data[1].Data["body"].(string)}
	require.ElementsMatch(t, []string{"first", "second"}, bodies)
}

func TestResolveInlineSortsOnSortableField(t *testing.T) {
	repo, desc := inlineFixture()
	svc := NewService(repo, nil, nil, nil)

	result, err := svc.ResolveInline(context.Background(), desc, "comments", "1", "rank", "asc")
	require.NoError(t, err)
	require.Len(t, result.Data, 2)
	require.Equal(t, "second", result.Data[0].Data["body"])
	require.Equal(t, "first", result.Data[1].Data["body"])
}

func TestResolveInlineIgnoresUnsortableField(t *testing.T) {
	repo, desc := inlineFixture()
	svc := NewService(repo, nil, nil, nil)

	// body is not sortable; insertion order survives.
	result, err := svc.ResolveInline(context.Background(), desc, "comments", "1", "body", "desc")
	require.NoError(t, err)
	require.Equal(t, "first", result.Data[0].Data["body"])
}

func TestResolveInlineUnknownInline(t *testing.T) {
	repo, desc := inlineFixture()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.ResolveInline(context.Background(), desc, "reviews", "1", "", "")
	require.ErrorIs(t, err, httpx.ErrInlineNotFound)
}

func TestResolveInlineMissingParent(t *testing.T) {
	repo, desc := inlineFixture()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.ResolveInline(context.Background(), desc, "comments", "999", "", "")
	require.ErrorIs(t, err, httpx.ErrParentNotFound)
}

func TestResolveInlineParentWithoutChildren(t *testing.T) {
	repo, desc := inlineFixture()
	repo.Seed("articles", records.Record{"title": "lonely"})
	svc := NewService(repo, nil, nil, nil)

	result, err := svc.ResolveInline(context.Background(), desc, "comments", "3", "", "")
	require.NoError(t, err)
	require.Zero(t, result.Total)
	require.Empty(t, result.Data)
}
