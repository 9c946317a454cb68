// Package servicemocks holds mocks that depend on the service package.
// It is separate from package mocks so that in-package service tests can
// import the other mocks without an import cycle.
package servicemocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"planfill/internal/domain"
	"planfill/internal/service"
)

// MockRunService is a mock implementation of service.RunService.
type MockRunService struct {
	mock.Mock
}

func (m *MockRunService) Generate(ctx context.Context, input *service.GenerateInput) (*service.GenerateOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerateOutput), args.Error(1)
}

func (m *MockRunService) Inspect(ctx context.Context, contentType string, template []byte) (domain.Structure, error) {
	args := m.Called(ctx, contentType, template)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Structure), args.Error(1)
}

func (m *MockRunService) SubmitRun(ctx context.Context, input *service.SubmitRunInput) (*domain.Run, string, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*domain.Run), args.String(1), args.Error(2)
}

func (m *MockRunService) GetRun(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

func (m *MockRunService) ListRuns(ctx context.Context, offset, limit int) ([]domain.Run, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Run), args.Int(1), args.Error(2)
}

func (m *MockRunService) DownloadRunOutput(ctx context.Context, id uuid.UUID, token string) (*service.DownloadOutput, error) {
	args := m.Called(ctx, id, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadOutput), args.Error(1)
}

func (m *MockRunService) PresignRunOutput(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockRunService) ProcessRun(ctx context.Context, run *domain.Run, maxAttempts int) {
	m.Called(ctx, run, maxAttempts)
}
