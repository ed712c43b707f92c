package mocks

import (
	"context"

	"expedientes/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockCaseRepository struct {
	mock.Mock
}

func (m *MockCaseRepository) Load(ctx context.Context) (*repository.Snapshot, error) {
	args := m.Called(ctx)
	if f, ok := args.Get(0).(func(context.Context) *repository.Snapshot); ok {
		return f(ctx), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Snapshot), args.Error(1)
}

func (m *MockCaseRepository) Save(ctx context.Context, snap *repository.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockCaseRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
