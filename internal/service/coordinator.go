package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"expedientes/internal/deadline"
	"expedientes/internal/model"
	"expedientes/internal/schema"
)

// UpdateRequest is an office's submission of the date a case was forwarded.
type UpdateRequest struct {
	CaseID        string `json:"case_id"`
	Office        string `json:"office"`
	ForwardedDate string `json:"forwarded_date"`
}

// UpdateResult describes an applied update. Warning is set when the update was persisted
// but the audit entry could not be written.
type UpdateResult struct {
	Entry   model.AuditEntry `json:"entry"`
	Record  model.CaseRecord `json:"record"`
	Warning string           `json:"warning,omitempty"`
}

// Coordinator applies forwarded-date updates to the case store.
//
// Every update re-reads the store, so it never writes back a cached view. The advisory lock
// serializes writers using this service only; edits made to the file by other means between the
// read and the write are lost. Last writer wins at file granularity.
type Coordinator struct {
	deps Deps
	opts Options
}

// NewCoordinator constructs a Coordinator.
func NewCoordinator(deps Deps, opts Options) *Coordinator {
	return &Coordinator{deps: deps.withDefaults(), opts: opts.withDefaults()}
}

// ApplyUpdate sets the forwarded date of req.CaseID and persists the whole store.
//
// Nothing is written when the case is missing, ambiguous or owned by another office.
// The audit entry is appended only after the store write succeeded, and the session cache is
// invalidated afterwards so the next read sees the update.
func (c *Coordinator) ApplyUpdate(ctx context.Context, req UpdateRequest) (res *UpdateResult, err error) {
	caseID := strings.TrimSpace(req.CaseID)
	office := strings.TrimSpace(req.Office)

	ctx, span := tracer.Start(ctx, "Coordinator.ApplyUpdate")
	span.SetAttributes(attribute.String("case_id", caseID), attribute.String("office", office))
	defer func() {
		c.deps.Metrics.observeUpdate(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome(err))
		}
		span.End()
	}()

	fail := func(kind, cause error) error {
		return &Error{Kind: kind, Op: "apply_update", CaseID: caseID, Office: office, Err: cause}
	}

	if caseID == "" {
		return nil, fail(ErrInvalidInput, fmt.Errorf("case id is required"))
	}
	if office == "" {
		return nil, fail(ErrInvalidInput, fmt.Errorf("office is required"))
	}
	forwarded, ok := schema.ParseDate(req.ForwardedDate, c.opts.Mode)
	if !ok {
		return nil, fail(ErrInvalidInput, fmt.Errorf("unparseable forwarded date %q", req.ForwardedDate))
	}

	release, err := c.deps.Locker.Acquire(ctx, c.opts.LockKey)
	if err != nil {
		return nil, fail(ErrPersistence, fmt.Errorf("acquire write lock: %w", err))
	}
	defer func() {
		if rerr := release(background(ctx)); rerr != nil {
			c.deps.Logger.WarnContext(ctx, "write_lock_release_failed", "case_id", caseID, "error", rerr)
		}
	}()

	snap, err := c.deps.Repo.Load(ctx)
	if err != nil {
		return nil, loadError("apply_update", caseID, office, err)
	}

	idx := -1
	for i, r := range snap.Records {
		if r.CaseID != caseID {
			continue
		}
		if idx >= 0 {
			return nil, fail(ErrAmbiguousID, nil)
		}
		idx = i
	}
	if idx < 0 {
		return nil, fail(ErrNotFound, nil)
	}

	rec := snap.Records[idx]
	if rec.Office != office {
		return nil, fail(ErrOfficeMismatch, fmt.Errorf("case is assigned to %q", rec.Office))
	}

	rec.ForwardedDate = &forwarded
	rec.DaysRemaining = deadline.DaysRemaining(rec.OriginationDate, rec.ForwardedDate, c.opts.today())
	snap.Records[idx] = rec

	snap.Sheet.Stamp(snap.Records)
	snap.Sheet.SetDate(rec.Row, schema.FieldForwardedDate, forwarded)
	snap.Sheet.SetDays(rec.Row, rec.DaysRemaining)

	if err := c.deps.Repo.Save(ctx, snap); err != nil {
		return nil, fail(ErrPersistence, err)
	}

	res = &UpdateResult{
		Record: rec,
		Entry: model.AuditEntry{
			Timestamp:     c.opts.Now().In(c.opts.Location),
			Office:        office,
			CaseID:        caseID,
			ForwardedDate: forwarded,
		},
	}

	if c.deps.Audit != nil {
		if aerr := c.deps.Audit.Append(ctx, res.Entry); aerr != nil {
			werr := fail(ErrAuditLogWrite, aerr)
			c.deps.Logger.WarnContext(ctx, "audit_log_write_failed", "case_id", caseID, "office", office, "error", werr)
			res.Warning = werr.Error()
		}
	}

	if cerr := c.deps.Cache.Invalidate(background(ctx)); cerr != nil {
		c.deps.Logger.WarnContext(ctx, "cache_invalidate_failed", "error", cerr)
	}

	c.deps.Logger.InfoContext(ctx, "case_updated",
		"case_id", caseID,
		"office", office,
		"forwarded_date", forwarded.Format(time.DateOnly),
	)
	return res, nil
}
