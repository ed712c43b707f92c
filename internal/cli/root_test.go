package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"expedientes/internal/auth"
	"expedientes/internal/model"
	"expedientes/internal/service"
	"expedientes/internal/service/mocks"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func intp(n int) *int { return &n }

type harness struct {
	svc    *mocks.MockCaseService
	closed bool
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(passphraseEnv, "")
	return &harness{svc: new(mocks.MockCaseService), out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
}

func (h *harness) open(ctx context.Context) (*Backend, func() error, error) {
	return &Backend{Cases: h.svc, Gate: auth.NewGate("2025")}, func() error {
		h.closed = true
		return nil
	}, nil
}

func (h *harness) run(args ...string) error {
	cmd := NewRootCommand(h.open)
	cmd.SetOut(h.out)
	cmd.SetErr(h.errOut)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand(nil)

	assert.Equal(t, "expedientes", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("format"))

	for _, name := range []string{"offices", "pending", "update", "export"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	h := newHarness(t)
	err := h.run("offices", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	h.svc.AssertNotCalled(t, "ListOffices", mock.Anything)
}

func TestOffices(t *testing.T) {
	h := newHarness(t)
	h.svc.On("ListOffices", mock.Anything).Return([]string{"Arequipa", "Lima"}, nil)

	require.NoError(t, h.run("offices"))
	assert.Equal(t, "Arequipa\nLima\n", h.out.String())
	assert.True(t, h.closed)
}

func TestOffices_JSON(t *testing.T) {
	h := newHarness(t)
	h.svc.On("ListOffices", mock.Anything).Return([]string{"Lima"}, nil)

	require.NoError(t, h.run("offices", "--format", "json"))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []any{"Lima"}, resp.Data)
}

func TestOffices_SourceUnavailable(t *testing.T) {
	h := newHarness(t)
	h.svc.On("ListOffices", mock.Anything).Return(nil, service.ErrSourceUnavailable)

	err := h.run("offices")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, h.out.String(), "SOURCE_UNAVAILABLE")
}

func TestOpenFailure(t *testing.T) {
	cmd := NewRootCommand(func(ctx context.Context) (*Backend, func() error, error) {
		return nil, nil, errors.New("no such bucket")
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"offices"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no such bucket")
}

func TestPending(t *testing.T) {
	h := newHarness(t)
	h.svc.On("Pending", mock.Anything, "Lima").Return(&service.PendingView{
		Office: "Lima",
		Records: []model.CaseRecord{{
			CaseID:         "EXP-001",
			Office:         "Lima",
			Status:         "pendiente",
			StageStartDate: date(2025, time.January, 10),
			DaysRemaining:  intp(9),
		}},
	}, nil)

	require.NoError(t, h.run("pending", "Lima", "--passphrase", "LIMA2025"))
	assert.Contains(t, h.out.String(), "CASE")
	assert.Contains(t, h.out.String(), "EXP-001")
	assert.Contains(t, h.out.String(), "10/01/2025")
}

func TestPending_PassphraseFromEnv(t *testing.T) {
	h := newHarness(t)
	t.Setenv(passphraseEnv, "LIMA2025")
	h.svc.On("Pending", mock.Anything, "Lima").Return(&service.PendingView{Office: "Lima"}, nil)

	require.NoError(t, h.run("pending", "Lima"))
	h.svc.AssertExpectations(t)
}

func TestPending_Unavailable(t *testing.T) {
	h := newHarness(t)
	h.svc.On("Pending", mock.Anything, "Lima").Return(&service.PendingView{
		Office:  "Lima",
		Records: []model.CaseRecord{},
		Message: service.UnavailableMessage,
	}, nil)

	require.NoError(t, h.run("pending", "Lima", "--passphrase", "LIMA2025"))
	assert.Contains(t, h.out.String(), service.UnavailableMessage)
	assert.NotContains(t, h.out.String(), "CASE")
}

func TestPending_WrongPassphrase(t *testing.T) {
	h := newHarness(t)

	err := h.run("pending", "Lima", "--passphrase", "lima2025")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, h.out.String(), "UNAUTHORIZED")
	h.svc.AssertNotCalled(t, "Pending", mock.Anything, mock.Anything)
}

func TestUpdate(t *testing.T) {
	h := newHarness(t)
	req := service.UpdateRequest{CaseID: "EXP-001", Office: "Lima", ForwardedDate: "20/01/2025"}
	h.svc.On("SubmitUpdate", mock.Anything, req).Return(&service.UpdateResult{
		Entry:  model.AuditEntry{Office: "Lima", CaseID: "EXP-001", ForwardedDate: *date(2025, time.January, 20)},
		Record: model.CaseRecord{CaseID: "EXP-001", Office: "Lima", DaysRemaining: intp(9)},
	}, nil)

	require.NoError(t, h.run("update", "EXP-001", "20/01/2025", "--office", "Lima", "--passphrase", "LIMA2025"))
	assert.Equal(t, "Case EXP-001 forwarded on 20/01/2025 (9 days)\n", h.out.String())
	assert.Empty(t, h.errOut.String())
}

func TestUpdate_AuditWarning(t *testing.T) {
	h := newHarness(t)
	h.svc.On("SubmitUpdate", mock.Anything, mock.Anything).Return(&service.UpdateResult{
		Entry:   model.AuditEntry{ForwardedDate: *date(2025, time.January, 20)},
		Record:  model.CaseRecord{CaseID: "EXP-001"},
		Warning: "audit log could not be written",
	}, nil)

	require.NoError(t, h.run("update", "EXP-001", "20/01/2025", "--office", "Lima", "--passphrase", "LIMA2025"))
	assert.Contains(t, h.out.String(), "(- days)")
	assert.Contains(t, h.errOut.String(), "Warning: audit log could not be written")
}

func TestUpdate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"not_found", service.ErrNotFound, "CASE_NOT_FOUND", ExitFailure},
		{"ambiguous", service.ErrAmbiguousID, "AMBIGUOUS_CASE_ID", ExitFailure},
		{"mismatch", service.ErrOfficeMismatch, "OFFICE_MISMATCH", ExitFailure},
		{"invalid", service.ErrInvalidInput, "INVALID_INPUT", ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.svc.On("SubmitUpdate", mock.Anything, mock.Anything).Return(nil, tt.err)

			err := h.run("update", "EXP-001", "20/01/2025", "--office", "Lima", "--passphrase", "LIMA2025", "--format", "json")
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(h.out.Bytes(), &resp))
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestUpdate_RequiresOffice(t *testing.T) {
	h := newHarness(t)
	err := h.run("update", "EXP-001", "20/01/2025", "--passphrase", "LIMA2025")
	require.Error(t, err)
	h.svc.AssertNotCalled(t, "SubmitUpdate", mock.Anything, mock.Anything)
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.svc.On("Pending", mock.Anything, "Lima").Return(&service.PendingView{
		Office:  "Lima",
		Records: []model.CaseRecord{{CaseID: "EXP-001", Office: "Lima", Status: "pendiente"}},
	}, nil)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, h.run("export", "Lima", "--passphrase", "LIMA2025", "--out", path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "EXP-001")
	assert.Contains(t, h.out.String(), "Exported 1 cases to "+path)
}

func TestExport_Stdout(t *testing.T) {
	h := newHarness(t)
	h.svc.On("Pending", mock.Anything, "Lima").Return(&service.PendingView{
		Office:  "Lima",
		Records: []model.CaseRecord{{CaseID: "EXP-002", Office: "Lima"}},
	}, nil)

	require.NoError(t, h.run("export", "Lima", "--passphrase", "LIMA2025", "-o", "-"))
	assert.Contains(t, h.out.String(), "EXP-002")
}

func TestExport_Unavailable(t *testing.T) {
	h := newHarness(t)
	h.svc.On("Pending", mock.Anything, "Lima").Return(&service.PendingView{
		Office:  "Lima",
		Records: []model.CaseRecord{},
		Message: service.UnavailableMessage,
	}, nil)

	err := h.run("export", "Lima", "--passphrase", "LIMA2025", "-o", filepath.Join(t.TempDir(), "x.csv"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
