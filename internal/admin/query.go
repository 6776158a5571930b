package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/JiaLiangChen99/robyn-admin/internal/platform/httpx"
	"github.com/JiaLiangChen99/robyn-admin/internal/records"
)

// Reserved query keys that are never treated as field filters.
var reservedParams = map[string]struct{}{
	"limit":  {},
	"offset": {},
	"search": {},
	"sort":   {},
	"order":  {},
	"_":      {},
}

// ListParams is the validated shape of a list request.
type ListParams struct {
	Limit  int
	Offset int
	Search string
	Sort   string
	Order  string
	// Filters holds additional key/value pairs from the query string.
	// Only keys that are declared search fields are applied.
	Filters map[string]string
}

// ParseListParams extracts list parameters from a query string, applying
// the default limit of 10, offset 0 and ascending order.
func ParseListParams(values url.Values) ListParams {
	p := ListParams{
		Limit:   10,
		Offset:  0,
		Search:  values.Get("search"),
		Sort:    values.Get("sort"),
		Order:   values.Get("order"),
		Filters: make(map[string]string),
	}
	if raw := values.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			p.Limit = n
		}
	}
	if raw := values.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			p.Offset = n
		}
	}
	if p.Order == "" {
		p.Order = "asc"
	}
	for key, vals := range values {
		if _, reserved := reservedParams[key]; reserved || len(vals) == 0 {
			continue
		}
		p.Filters[key] = vals[0]
	}
	return p
}

// CacheKey renders the parameters into a canonical string so identical
// requests share a cache entry.
func (p ListParams) CacheKey() string {
	parts := []string{
		"limit=" + strconv.Itoa(p.Limit),
		"offset=" + strconv.Itoa(p.Offset),
		"search=" + p.Search,
		"sort=" + p.Sort,
		"order=" + p.Order,
	}
	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+p.Filters[k])
	}
	return strings.Join(parts, "&")
}

// ListResult is a page of serialized records plus the total match count
// before pagination.
type ListResult struct {
	Total int64              `json:"total"`
	Data  []SerializedRecord `json:"data"`
}

// List executes a bounded repository query for the descriptor and
// serializes the page.
//
// Filter keys that are not declared search fields are ignored. The total is
// computed from the same filter predicates as the page fetch; under
// concurrent writers the two reads may straddle a mutation, which callers
// must tolerate as documented staleness, not corruption.
func (s *Service) List(ctx context.Context, desc *Descriptor, p ListParams) (*ListResult, error) {
	query := s.buildQuery(desc, p)

	total, err := query.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrRepository, err)
	}

	query = query.Offset(p.Offset).Limit(p.Limit)
	rows, err := query.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrRepository, err)
	}

	result := &ListResult{Total: total, Data: make([]SerializedRecord, 0, len(rows))}
	for _, rec := range rows {
		serialized, err := serializeRecord(desc.TableFields, rec)
		if err != nil {
			// Partial-result tolerance: skip the record, keep the batch,
			// and make the failure observable.
			s.logger.Warn("serialize record skipped",
				slog.String("route_id", desc.RouteID()),
				slog.Any("error", err))
			s.metrics.CountSerializeFailure(desc.RouteID())
			continue
		}
		result.Data = append(result.Data, serialized)
	}
	return result, nil
}

// Search runs the declared search-field filters without pagination beyond
// the descriptor's page size, mirroring the search endpoint's contract.
func (s *Service) Search(ctx context.Context, desc *Descriptor, filters map[string]string) ([]SerializedRecord, error) {
	p := ListParams{Limit: desc.PageSize(), Order: "asc", Filters: filters}
	result, err := s.List(ctx, desc, p)
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (s *Service) buildQuery(desc *Descriptor, p ListParams) records.Query {
	query := s.repo.Query(desc.Model)

	if p.Search != "" {
		if fields := desc.SearchFieldNames(); len(fields) > 0 {
			query = query.Match(fields, p.Search)
		}
	}
	for key, value := range p.Filters {
		// Unknown keys are dropped here so arbitrary fields can never be
		// probed through the filter surface.
		if desc.IsSearchField(key) && value != "" {
			query = query.Match([]string{key}, value)
		}
	}

	switch {
	case p.Sort != "":
		query = query.OrderBy(orderMarker(p.Sort, p.Order))
	case len(desc.DefaultOrdering) > 0:
		for _, field := range desc.DefaultOrdering {
			query = query.OrderBy(field)
		}
	}
	return query
}

// orderMarker prefixes the field with the descending marker for
// order=desc; any other order value sorts ascending.
func orderMarker(field, order string) string {
	if order == "desc" {
		return records.DescendingPrefix + field
	}
	return field
}
