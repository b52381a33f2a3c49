package report

import (
	"context"

	"go.uber.org/zap"
)

var _ AuditLog = (*ZapAuditLog)(nil)

// ZapAuditLog writes audit entries to a zap logger.
type ZapAuditLog struct {
	lg *zap.Logger
}

// NewZapAuditLog returns an AuditLog backed by lg.
func NewZapAuditLog(lg *zap.Logger) *ZapAuditLog {
	return &ZapAuditLog{lg: lg.Named("audit")}
}

// Exported logs a completed export.
func (a *ZapAuditLog) Exported(_ context.Context, archivePath string, orders int) {
	a.lg.Info("Exported bundle",
		zap.String("path", archivePath),
		zap.Int("orders", orders),
	)
}
