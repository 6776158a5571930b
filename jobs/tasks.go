// Package jobs defines the background task types and the worker that
// consumes them.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JiaLiangChen99/robyn-admin/internal/admin"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuditRecord persists one mutation audit event.
	TaskTypeAuditRecord = "audit:record"
	// TaskTypeUploadScrub removes uploaded files older than the retention
	// window.
	TaskTypeUploadScrub = "upload:scrub"
)

// NewAuditTask constructs an Asynq task for one audit event.
func NewAuditTask(event admin.AuditEvent) (*asynq.Task, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditRecord, data), nil
}

// AuditWriter persists audit events into audit_logs.
type AuditWriter struct {
	pool *pgxpool.Pool
}

// NewAuditWriter returns an AuditWriter on the given pool.
func NewAuditWriter(pool *pgxpool.Pool) *AuditWriter {
	return &AuditWriter{pool: pool}
}

// HandleAuditTask processes TaskTypeAuditRecord tasks.
func (w *AuditWriter) HandleAuditTask(ctx context.Context, t *asynq.Task) error {
	var event admin.AuditEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return asynq.SkipRetry
	}
	_, err := w.pool.Exec(ctx, `
		INSERT INTO audit_logs (actor_id, action, route_id, model, record_id, item_count, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		event.ActorID, event.Action, event.RouteID, event.Model, event.RecordID, event.Count)
	return err
}

// AuditEnqueuer implements admin.AuditSink by enqueueing audit tasks.
// Enqueue failures are logged and dropped; auditing never blocks or fails a
// mutation.
type AuditEnqueuer struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewAuditEnqueuer constructs an AuditEnqueuer.
func NewAuditEnqueuer(client *asynq.Client, logger *slog.Logger) *AuditEnqueuer {
	return &AuditEnqueuer{client: client, logger: logger}
}

// RecordMutation enqueues the event for the worker.
func (e *AuditEnqueuer) RecordMutation(ctx context.Context, event admin.AuditEvent) {
	if e == nil || e.client == nil {
		return
	}
	task, err := NewAuditTask(event)
	if err != nil {
		return
	}
	if _, err := e.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.Timeout(30*time.Second)); err != nil {
		if e.logger != nil {
			e.logger.Warn("enqueue audit event", slog.Any("error", err))
		}
	}
}
