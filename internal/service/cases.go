package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/cases"

	"expedientes/internal/model"
)

// PendingStatus is the status value of cases still waiting to be forwarded.
const PendingStatus = "pendiente"

// UnavailableMessage is shown instead of the pending list when the store cannot be read.
const UnavailableMessage = "El archivo de expedientes no está disponible en este momento."

// PendingView is an office's pending work list. Message is set when the list could not be read.
type PendingView struct {
	Office  string             `json:"office"`
	Records []model.CaseRecord `json:"records"`
	Message string             `json:"message,omitempty"`
}

// CaseService is the collaborator surface offices use.
type CaseService interface {
	// Load returns every record, served from the session cache when fresh.
	Load(ctx context.Context) ([]model.CaseRecord, error)

	// ListOffices returns the distinct non-empty offices, sorted.
	ListOffices(ctx context.Context) ([]string, error)

	// Filter returns the records of office, optionally restricted to a status (case-insensitive).
	Filter(ctx context.Context, office, status string) ([]model.CaseRecord, error)

	// Pending returns the pending records of office. An unavailable source yields an empty view with a message.
	Pending(ctx context.Context, office string) (*PendingView, error)

	// SubmitUpdate records the forwarded date of a case.
	SubmitUpdate(ctx context.Context, req UpdateRequest) (*UpdateResult, error)
}

// caseService is a concrete implementation of CaseService.
type caseService struct {
	deps  Deps
	opts  Options
	coord *Coordinator
}

// NewCaseService constructs a new CaseService whose updates go through coord.
func NewCaseService(deps Deps, opts Options, coord *Coordinator) CaseService {
	return &caseService{deps: deps.withDefaults(), opts: opts.withDefaults(), coord: coord}
}

func (s *caseService) Load(ctx context.Context) ([]model.CaseRecord, error) {
	ctx, span := tracer.Start(ctx, "CaseService.Load")
	defer span.End()

	records, err := s.deps.Cache.GetOrLoad(ctx, s.opts.CacheTTL, func(ctx context.Context) ([]model.CaseRecord, error) {
		s.deps.Metrics.observeCacheLoad()
		snap, err := s.deps.Repo.Load(ctx)
		if err != nil {
			return nil, err
		}
		return snap.Records, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, loadError("load", "", "", err)
	}
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

func (s *caseService) ListOffices(ctx context.Context) ([]string, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var offices []string
	for _, r := range records {
		if r.Office == "" {
			continue
		}
		if _, ok := seen[r.Office]; ok {
			continue
		}
		seen[r.Office] = struct{}{}
		offices = append(offices, r.Office)
	}
	slices.Sort(offices)
	return offices, nil
}

func (s *caseService) Filter(ctx context.Context, office, status string) ([]model.CaseRecord, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return nil, withOffice(err, office)
	}
	return filterRecords(records, office, status), nil
}

func (s *caseService) Pending(ctx context.Context, office string) (*PendingView, error) {
	records, err := s.Filter(ctx, office, PendingStatus)
	if errors.Is(err, ErrSourceUnavailable) {
		s.deps.Logger.WarnContext(ctx, "pending_records_unavailable", "office", office, "error", err)
		return &PendingView{Office: office, Records: []model.CaseRecord{}, Message: UnavailableMessage}, nil
	}
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.CaseRecord{}
	}
	return &PendingView{Office: office, Records: records}, nil
}

func (s *caseService) SubmitUpdate(ctx context.Context, req UpdateRequest) (*UpdateResult, error) {
	return s.coord.ApplyUpdate(ctx, req)
}

// filterRecords keeps records of exactly office; a non-empty status must match after trimming and case folding.
func filterRecords(records []model.CaseRecord, office, status string) []model.CaseRecord {
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(status))
	var out []model.CaseRecord
	for _, r := range records {
		if r.Office != office {
			continue
		}
		if want != "" && fold.String(strings.TrimSpace(r.Status)) != want {
			continue
		}
		out = append(out, r)
	}
	return out
}

func withOffice(err error, office string) error {
	var e *Error
	if errors.As(err, &e) && e.Office == "" {
		e.Office = office
	}
	return err
}
