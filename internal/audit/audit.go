// Package audit appends one line per successful forwarded-date update to a CSV log on storage.
// The log is write-only from the service's point of view.
package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sync"
	"time"

	"expedientes/internal/model"
	"expedientes/internal/schema"
	"expedientes/internal/storage"
)

var header = []string{"timestamp", "office", "case_id", "forwarded_date"}

// Log records audit entries.
type Log interface {
	Append(ctx context.Context, e model.AuditEntry) error
}

// CSVLog writes entries as CSV lines under key. The header row is written when the log does not exist yet.
type CSVLog struct {
	mu    sync.Mutex
	store storage.Storage
	key   string
	loc   *time.Location
}

var _ Log = (*CSVLog)(nil)

// NewCSVLog creates a log at key. Timestamps are written in loc (UTC when nil).
func NewCSVLog(store storage.Storage, key string, loc *time.Location) *CSVLog {
	if loc == nil {
		loc = time.UTC
	}
	return &CSVLog{store: store, key: key, loc: loc}
}

func (l *CSVLog) Append(ctx context.Context, e model.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_, err := l.store.Stat(ctx, l.key)
	switch {
	case errors.Is(err, storage.ErrObjectNotFound):
		if err := w.Write(header); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("stat audit log: %w", err)
	}

	if err := w.Write([]string{
		e.Timestamp.In(l.loc).Format(schema.DateLayout),
		e.Office,
		e.CaseID,
		e.ForwardedDate.Format(schema.DateLayout),
	}); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	if err := l.store.Append(ctx, l.key, buf.Bytes()); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}
