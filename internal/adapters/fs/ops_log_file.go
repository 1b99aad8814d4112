package fs

import (
	"context"
	"sort"
	"time"

	"github.com/pborman/uuid"

	"github.com/bft-labs/graphwal/internal/domain"
	"github.com/bft-labs/graphwal/internal/ports"
)

// OpsLogFile implements ports.AuditLog as <root>/.graph/ops_log.jsonl.
type OpsLogFile struct {
	layout Layout
	logger ports.Logger
	now    func() time.Time
	newID  func() string
}

// NewOpsLogFile creates an audit log for the given layout.
func NewOpsLogFile(layout Layout, logger ports.Logger) *OpsLogFile {
	return &OpsLogFile{
		layout: layout,
		logger: logger,
		now:    time.Now,
		newID:  uuid.New,
	}
}

// Path returns the full path to the audit log.
func (l *OpsLogFile) Path() string {
	return l.layout.OpsLogPath()
}

// Append records tx with a fresh id and the current time in milliseconds.
func (l *OpsLogFile) Append(ctx context.Context, tx domain.Transaction) (domain.OpsLogEntry, error) {
	entry := domain.NewOpsLogEntry(l.newID(), l.now(), tx)
	if err := l.layout.EnsureControlDir(); err != nil {
		return domain.OpsLogEntry{}, err
	}
	if err := appendLine("ops log append", l.Path(), entry); err != nil {
		return domain.OpsLogEntry{}, err
	}
	l.logger.Debug("audit entry appended",
		ports.TxID(tx.ID),
		ports.String("audit_id", entry.ID),
		ports.Int64("timestamp", entry.Timestamp))
	return entry, nil
}

// Read returns all entries most recent first, truncated to limit when
// limit > 0. Entries with equal timestamps keep their file order.
func (l *OpsLogFile) Read(ctx context.Context, limit int) ([]domain.OpsLogEntry, error) {
	entries, err := decodeLines[domain.OpsLogEntry]("ops log read", l.Path())
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

var _ ports.AuditLog = (*OpsLogFile)(nil)
