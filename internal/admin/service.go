package admin

import (
	"context"
	"log/slog"

	"github.com/JiaLiangChen99/robyn-admin/internal/observability"
	"github.com/JiaLiangChen99/robyn-admin/internal/records"
)

// AuditSink receives mutation events for asynchronous recording. A nil sink
// disables auditing.
type AuditSink interface {
	RecordMutation(ctx context.Context, event AuditEvent)
}

// AuditEvent describes one mutation for the audit trail.
type AuditEvent struct {
	ActorID  int64  `json:"actor_id"`
	Action   string `json:"action"`
	RouteID  string `json:"route_id"`
	Model    string `json:"model"`
	RecordID string `json:"record_id,omitempty"`
	Count    int    `json:"count,omitempty"`
}

// Service executes descriptor-driven queries and mutations against the
// record repository.
type Service struct {
	repo    records.Repository
	logger  *slog.Logger
	metrics *observability.Metrics
	audit   AuditSink
}

// NewService constructs a Service.
func NewService(repo records.Repository, logger *slog.Logger, metrics *observability.Metrics, audit AuditSink) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, metrics: metrics, audit: audit}
}

func (s *Service) recordAudit(ctx context.Context, event AuditEvent) {
	if s.audit == nil {
		return
	}
	s.audit.RecordMutation(ctx, event)
}
