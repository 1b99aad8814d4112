package ports

import (
	"context"

	"github.com/bft-labs/graphwal/internal/domain"
)

// AuditLog is the append-only record of committed transactions.
type AuditLog interface {
	// Append records tx as committed and returns the stored entry.
	Append(ctx context.Context, tx domain.Transaction) (domain.OpsLogEntry, error)

	// Read returns entries most recent first. A limit <= 0 returns all.
	Read(ctx context.Context, limit int) ([]domain.OpsLogEntry, error)
}
