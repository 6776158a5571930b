package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/JiaLiangChen99/robyn-admin/internal/platform/httpx"
	"github.com/JiaLiangChen99/robyn-admin/internal/records"
)

// Create processes the present form fields through their processors and
// persists the record. Fields absent from the input are simply omitted from
// the write; presence is not enforced here.
func (s *Service) Create(ctx context.Context, desc *Descriptor, form url.Values, actorID int64) error {
	values, err := processForm(desc.FormFields, form)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: no known fields in input", httpx.ErrValidation)
	}
	if err := s.repo.Create(ctx, desc.Model, values); err != nil {
		return fmt.Errorf("%w: %s", httpx.ErrRepository, err)
	}
	s.recordAudit(ctx, AuditEvent{ActorID: actorID, Action: "add", RouteID: desc.RouteID(), Model: desc.Model})
	return nil
}

// Update applies a partial update: only fields present in the input are
// processed and assigned, then persisted in a single save. A missing record
// is reported distinctly from a permission failure.
func (s *Service) Update(ctx context.Context, desc *Descriptor, id string, form url.Values, actorID int64) error {
	if _, err := s.repo.Get(ctx, desc.Model, id); err != nil {
		if errors.Is(err, records.ErrNoRows) {
			return httpx.ErrRecordNotFound
		}
		return fmt.Errorf("%w: %s", httpx.ErrRepository, err)
	}
	values, err := processForm(desc.FormFields, form)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	if err := s.repo.Update(ctx, desc.Model, id, values); err != nil {
		if errors.Is(err, records.ErrNoRows) {
			return httpx.ErrRecordNotFound
		}
		return fmt.Errorf("%w: %s", httpx.ErrRepository, err)
	}
	s.recordAudit(ctx, AuditEvent{ActorID: actorID, Action: "edit", RouteID: desc.RouteID(), Model: desc.Model, RecordID: id})
	return nil
}

// Delete removes one record by id.
func (s *Service) Delete(ctx context.Context, desc *Descriptor, id string, actorID int64) error {
	if _, err := s.repo.Get(ctx, desc.Model, id); err != nil {
		if errors.Is(err, records.ErrNoRows) {
			return httpx.ErrRecordNotFound
		}
		return fmt.Errorf("%w: %s", httpx.ErrRepository, err)
	}
	if err := s.repo.Delete(ctx, desc.Model, id); err != nil {
		if errors.Is(err, records.ErrNoRows) {
			return httpx.ErrRecordNotFound
		}
		return fmt.Errorf("%w: %s", httpx.ErrRepository, err)
	}
	s.recordAudit(ctx, AuditEvent{ActorID: actorID, Action: "delete", RouteID: desc.RouteID(), Model: desc.Model, RecordID: id})
	return nil
}

// BatchDelete resolves each id independently: a failed lookup or delete is
// logged and skipped, never aborting the batch. It returns the number of
// records actually deleted.
func (s *Service) BatchDelete(ctx context.Context, desc *Descriptor, ids []string, actorID int64) int {
	deleted := 0
	for _, id := range ids {
		if err := s.repo.Delete(ctx, desc.Model, id); err != nil {
			s.logger.Warn("batch delete item failed",
				slog.String("route_id", desc.RouteID()),
				slog.String("id", id),
				slog.Any("error", err))
			continue
		}
		deleted++
	}
	if deleted > 0 {
		s.recordAudit(ctx, AuditEvent{ActorID: actorID, Action: "batch_delete", RouteID: desc.RouteID(), Model: desc.Model, Count: deleted})
	}
	return deleted
}

// processForm runs each present field's processor; unknown keys in the form
// are ignored.
func processForm(fields []Field, form url.Values) (map[string]any, error) {
	values := make(map[string]any)
	for _, f := range fields {
		if !form.Has(f.Name) {
			continue
		}
		processed, err := f.ProcessValue(form.Get(f.Name))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
		}
		values[f.Name] = processed
	}
	return values, nil
}
