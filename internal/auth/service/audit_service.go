package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/chris743/db-api/internal/auth/domain"
)

// AuditRecorder appends security audit entries. Failures are logged and
// swallowed: an audit write must never fail the request that triggered it.
type AuditRecorder struct {
	repo domain.AuditLogRepository
	log  *zap.Logger
}

func NewAuditRecorder(repo domain.AuditLogRepository, log *zap.Logger) *AuditRecorder {
	return &AuditRecorder{repo: repo, log: log}
}

func (a *AuditRecorder) Record(ctx context.Context, entry *domain.AuditEntry) {
	if err := a.repo.Insert(ctx, entry); err != nil {
		a.log.Error("failed to write audit log entry",
			zap.String("action", entry.Action),
			zap.Error(err))
	}
}
