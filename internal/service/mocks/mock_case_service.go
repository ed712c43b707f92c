package mocks

import (
	"context"

	"expedientes/internal/model"
	"expedientes/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockCaseService struct {
	mock.Mock
}

func (m *MockCaseService) Load(ctx context.Context) ([]model.CaseRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CaseRecord), args.Error(1)
}

func (m *MockCaseService) ListOffices(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCaseService) Filter(ctx context.Context, office, status string) ([]model.CaseRecord, error) {
	args := m.Called(ctx, office, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CaseRecord), args.Error(1)
}

func (m *MockCaseService) Pending(ctx context.Context, office string) (*service.PendingView, error) {
	args := m.Called(ctx, office)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PendingView), args.Error(1)
}

func (m *MockCaseService) SubmitUpdate(ctx context.Context, req service.UpdateRequest) (*service.UpdateResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UpdateResult), args.Error(1)
}
