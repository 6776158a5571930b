package admin

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JiaLiangChen99/robyn-admin/internal/observability"
	"github.com/JiaLiangChen99/robyn-admin/internal/records"
)

func seededArticleRepo() *records.MemoryRepository {
	repo := records.NewMemoryRepository()
	repo.Seed("articles",
		records.Record{"title": "go generics", "views": int64(10)},
		records.Record{"title": "go channels", "views": int64(50)},
		records.Record{"title": "rust lifetimes", "views": int64(30)},
		records.Record{"title": "python asyncio", "views": int64(20)},
		records.Record{"title": "go modules", "views": int64(40)},
	)
	return repo
}

func articleDescriptor() *Descriptor {
	return &Descriptor{
		Name:        "ArticleAdmin",
		Model:       "articles",
		VerboseName: "Articles",
		TableFields: []Field{
			{Name: "title", Label: "Title"},
			{Name: "views", Label: "Views", Sortable: true},
		},
		SearchFields: []Field{
			{Name: "title", Label: "Title"},
		},
	}
}

func TestParseListParamsDefaults(t *testing.T) {
	p := ParseListParams(url.Values{})
	require.Equal(t, 10, p.Limit)
	require.Equal(t, 0, p.Offset)
	require.Equal(t, "asc", p.Order)
	require.Empty(t, p.Filters)
}

func TestParseListParamsCollectsFilters(t *testing.T) {
	values := url.Values{
		"limit":  {"25"},
		"offset": {"5"},
		"search": {"go"},
		"sort":   {"views"},
		"order":  {"desc"},
		"_":      {"1724300000"},
		"title":  {"channels"},
	}
	p := ParseListParams(values)
	require.Equal(t, 25, p.Limit)
	require.Equal(t, 5, p.Offset)
	require.Equal(t, "go", p.Search)
	require.Equal(t, "views", p.Sort)
	require.Equal(t, "desc", p.Order)
	require.Equal(t, map[string]string{"title": "channels"}, p.Filters)
}

func TestParseListParamsIgnoresInvalidNumbers(t *testing.T) {
	p := ParseListParams(url.Values{"limit": {"abc"}, "offset": {"-3"}})
	require.Equal(t, 10, p.Limit)
	require.Equal(t, 0, p.Offset)
}

func TestCacheKeyIsCanonical(t *testing.T) {
	a := ListParams{Limit: 10, Order: "asc", Filters: map[string]string{"b": "2", "a": "1"}}
	b := ListParams{Limit: 10, Order: "asc", Filters: map[string]string{"a": "1", "b": "2"}}
	require.Equal(t, a.CacheKey(), b.CacheKey())
	require.Equal(t, "limit=10&offset=0&search=&sort=&order=asc&a=1&b=2", a.CacheKey())
}

func TestListPaginates(t *testing.T) {
	svc := NewService(seededArticleRepo(), nil, nil, nil)
	desc := articleDescriptor()

	result, err := svc.List(context.Background(), desc, ListParams{Limit: 2, Order: "asc"})
	require.NoError(t, err)
	require.EqualValues(t, 5, result.Total)
	require.Len(t, result.Data, 2)
}

func TestListSortsDescending(t *testing.T) {
	svc := NewService(seededArticleRepo(), nil, nil, nil)
	desc := articleDescriptor()

	result, err := svc.List(context.Background(), desc, ListParams{Limit: 10, Sort: "views", Order: "desc"})
	require.NoError(t, err)
	require.Len(t, result.Data, 5)
	prev := int64(1 << 62)
	for _, rec := range result.Data {
		views, ok := rec.Data["views"].(int64)
		require.True(t, ok)
		require.LessOrEqual(t, views, prev)
		prev = views
	}
}

func TestListAppliesSearchAcrossDeclaredFields(t *testing.T) {
	svc := NewService(seededArticleRepo(), nil, nil, nil)
	desc := articleDescriptor()

	result, err := svc.List(context.Background(), desc, ListParams{Limit: 10, Search: "go", Order: "asc"})
	require.NoError(t, err)
	require.EqualValues(t, 3, result.Total)
	require.Len(t, result.Data, 3)
}

func TestListIgnoresUndeclaredFilterKeys(t *testing.T) {
	svc := NewService(seededArticleRepo(), nil, nil, nil)
	desc := articleDescriptor()

	result, err := svc.List(context.Background(), desc, ListParams{
		Limit:   10,
		Order:   "asc",
		Filters: map[string]string{"views": "50", "secret_column": "x"},
	})
	require.NoError(t, err)
	// "views" is not a declared search field either, so both keys drop out.
	require.EqualValues(t, 5, result.Total)
}

func TestListAppliesDeclaredFilter(t *testing.T) {
	svc := NewService(seededArticleRepo(), nil, nil, nil)
	desc := articleDescriptor()

	result, err := svc.List(context.Background(), desc, ListParams{
		Limit:   10,
		Order:   "asc",
		Filters: map[string]string{"title": "channels"},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, result.Total)
	require.Equal(t, "go channels", result.Data[0].Data["title"])
}

func TestListSkipsUnserializableRecords(t *testing.T) {
	repo := records.NewMemoryRepository()
	repo.Seed("articles",
		records.Record{"title": "fine", "views": int64(1)},
		records.Record{"title": "boom", "views": int64(2)},
		records.Record{"title": "also fine", "views": int64(3)},
	)
	metrics := observability.NewMetrics()
	svc := NewService(repo, nil, metrics, nil)
	desc := &Descriptor{
		Name:  "ArticleAdmin",
		Model: "articles",
		TableFields: []Field{
			{Name: "title", Label: "Title", Format: func(v any) (any, error) {
				if v == "boom" {
					return nil, errors.New("bad value")
				}
				return v, nil
			}},
		},
	}

	result, err := svc.List(context.Background(), desc, ListParams{Limit: 10, Order: "asc"})
	require.NoError(t, err)
	require.EqualValues(t, 3, result.Total)
	require.Len(t, result.Data, 2)

	families, err := metrics.Gatherer().Gather()
	require.NoError(t, err)
	var found bool
	for _, fam := range families {
		if fam.GetName() == "admin_serialize_failures_total" {
			found = true
			require.Len(t, fam.GetMetric(), 1)
			require.EqualValues(t, 1, fam.GetMetric()[0].GetCounter().GetValue())
		}
	}
	require.True(t, found)
}

func TestSearchBoundsByPageSize(t *testing.T) {
	svc := NewService(seededArticleRepo(), nil, nil, nil)
	desc := articleDescriptor()
	desc.PerPage = 2

	data, err := svc.Search(context.Background(), desc, map[string]string{"title": "go"})
	require.NoError(t, err)
	require.Len(t, data, 2)
}
