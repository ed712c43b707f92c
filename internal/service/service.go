// Package service holds the record service offices read through and the Update Coordinator
// that writes forwarded dates back to the shared case store.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"expedientes/internal/audit"
	"expedientes/internal/cache"
	"expedientes/internal/lock"
	"expedientes/internal/repository"
	"expedientes/internal/schema"
)

var tracer = otel.Tracer("expedientes/internal/service")

// Deps are the collaborators shared by the record service and the coordinator.
type Deps struct {
	Repo   repository.CaseRepository
	Cache  cache.Cache
	Locker lock.Locker
	// Audit is nil when the audit log is disabled.
	Audit   audit.Log
	Metrics *Metrics
	Logger  *slog.Logger
}

// Options tune reads and updates.
type Options struct {
	Mode     schema.Mode
	Location *time.Location
	CacheTTL time.Duration
	// LockKey names the advisory lock; usually the store path.
	LockKey string
	Now     func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = schema.DayFirst
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.LockKey == "" {
		o.LockKey = "case-store"
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (d Deps) withDefaults() Deps {
	if d.Cache == nil {
		d.Cache = cache.NewMemory(nil)
	}
	if d.Locker == nil {
		d.Locker = lock.NewLocal()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

func (o Options) today() time.Time {
	return o.Now().In(o.Location)
}

// background detaches cleanup work from a request context that may already be canceled.
func background(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
