package sheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"expedientes/internal/repository"
	"expedientes/internal/schema"
	"expedientes/internal/storage"
	"expedientes/internal/workbook"
)

// CaseSheet is a spreadsheet implementation of repository.CaseRepository.
// The whole file is read on every Load and replaced on every Save.
type CaseSheet struct {
	store  storage.Storage
	key    string
	format workbook.Format
	mode   schema.Mode
	loc    *time.Location
	now    func() time.Time
}

var _ repository.CaseRepository = (*CaseSheet)(nil)

// Option configures a CaseSheet.
type Option func(*CaseSheet)

// WithClock overrides the clock used to compute "today".
func WithClock(now func() time.Time) Option {
	return func(c *CaseSheet) { c.now = now }
}

// WithLocation sets the timezone "today" is taken in.
func WithLocation(loc *time.Location) Option {
	return func(c *CaseSheet) { c.loc = loc }
}

// NewCaseSheet creates a repository over the object key in store. The file format follows the key's extension.
func NewCaseSheet(store storage.Storage, key string, mode schema.Mode, opts ...Option) (*CaseSheet, error) {
	f, err := workbook.FormatFromPath(key)
	if err != nil {
		return nil, err
	}
	c := &CaseSheet{
		store:  store,
		key:    key,
		format: f,
		mode:   mode,
		loc:    time.UTC,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Load reads and normalizes the spreadsheet.
func (c *CaseSheet) Load(ctx context.Context) (*repository.Snapshot, error) {
	rc, _, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", repository.ErrSourceUnavailable, c.key, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", repository.ErrSourceUnavailable, c.key, err)
	}

	sh, err := workbook.Decode(data, c.format)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", repository.ErrSourceUnavailable, c.key, err)
	}

	records, err := schema.Normalize(sh, schema.Options{Mode: c.mode, Today: c.now().In(c.loc)})
	if err != nil {
		return nil, err
	}
	return &repository.Snapshot{Sheet: sh, Records: records, Format: c.format, Raw: data}, nil
}

// Save writes the sheet back and replaces the object. XLSX snapshots are patched cell by cell
// over the bytes they were loaded from.
func (c *CaseSheet) Save(ctx context.Context, snap *repository.Snapshot) error {
	if snap == nil || snap.Sheet == nil {
		return errors.New("nothing to save")
	}
	data, err := workbook.Patch(snap.Raw, snap.Sheet, c.format)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	_, err = c.store.Put(ctx, c.key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: contentType(c.format),
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	return nil
}

func (c *CaseSheet) Ping(ctx context.Context) error {
	if _, err := c.store.Stat(ctx, c.key); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrSourceUnavailable, err)
	}
	return nil
}

func contentType(f workbook.Format) string {
	switch f {
	case workbook.XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case workbook.XLS:
		return "application/vnd.ms-excel"
	default:
		return "text/csv"
	}
}
