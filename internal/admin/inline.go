package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JiaLiangChen99/robyn-admin/internal/platform/httpx"
	"github.com/JiaLiangChen99/robyn-admin/internal/records"
)

// InlineResult is the child listing scoped to one parent record, with the
// inline's field metadata passed through for the consuming surface.
type InlineResult struct {
	Data   []SerializedRecord `json:"data"`
	Total  int                `json:"total"`
	Fields []FieldConfig      `json:"fields"`
}

// ResolveInline loads the child records of a declared inline relation.
// A missing inline and a missing parent are distinct not-found conditions.
// The sort is applied only when the requested field is declared sortable on
// the inline; unknown or unsortable fields are silently ignored.
func (s *Service) ResolveInline(ctx context.Context, desc *Descriptor, inlineModel, parentID, sortField, order string) (*InlineResult, error) {
	inline, ok := desc.FindInline(inlineModel)
	if !ok {
		return nil, httpx.ErrInlineNotFound
	}

	if _, err := s.repo.Get(ctx, desc.Model, parentID); err != nil {
		if errors.Is(err, records.ErrNoRows) {
			return nil, httpx.ErrParentNotFound
		}
		return nil, fmt.Errorf("%w: %s", httpx.ErrRepository, err)
	}

	query := s.repo.Query(inline.Model).Filter(inline.ForeignKey, parentID)
	if sortField != "" && inline.SortableField(sortField) {
		query = query.OrderBy(orderMarker(sortField, order))
	}

	rows, err := query.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", httpx.ErrRepository, err)
	}

	result := &InlineResult{
		Data:   make([]SerializedRecord, 0, len(rows)),
		Fields: inline.FieldConfigs(),
	}
	for _, rec := range rows {
		serialized, err := serializeRecord(inline.TableFields, rec)
		if err != nil {
			s.logger.Warn("serialize inline record skipped",
				slog.String("route_id", desc.RouteID()),
				slog.String("inline", inline.Model),
				slog.Any("error", err))
			s.metrics.CountSerializeFailure(desc.RouteID())
			continue
		}
		result.Data = append(result.Data, serialized)
	}
	result.Total = len(result.Data)
	return result, nil
}
