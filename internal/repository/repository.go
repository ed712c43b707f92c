package repository

import (
	"context"
	"errors"

	"expedientes/internal/model"
	"expedientes/internal/schema"
	"expedientes/internal/workbook"
)

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., sheet) inside this directory.

// ErrSourceUnavailable is returned when the backing spreadsheet is missing, unreachable or unreadable.
var ErrSourceUnavailable = errors.New("case source unavailable")

// Snapshot is one full read of the backing store: the raw sheet kept for write-back and the
// normalized records derived from it. Records[i].Row indexes Sheet.Rows.
type Snapshot struct {
	Sheet   *schema.Sheet
	Records []model.CaseRecord
	Format  workbook.Format
	// Raw is the file the sheet was decoded from; Save patches it instead of rebuilding when set.
	Raw []byte
}

// CaseRepository reads and rewrites the whole case store. No business logic here.
type CaseRepository interface {
	// Load reads the store fresh and normalizes it. Days remaining are computed for the current day.
	Load(ctx context.Context) (*Snapshot, error)

	// Save writes the snapshot's changed cells back and replaces the store atomically.
	Save(ctx context.Context, snap *Snapshot) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
