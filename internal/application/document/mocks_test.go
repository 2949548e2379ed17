package document_test

import (
	"context"
	"io"
	"time"

	domain "github.com/billydoc/backend/internal/domain/document"
	"github.com/billydoc/backend/internal/domain/shared"
	infra "github.com/billydoc/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, record *domain.Record) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRepository) FindByNumber(ctx context.Context, number string) (*domain.Record, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Record), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Record, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Record), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, req *infra.RenderRequest) (*infra.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.RenderResult), args.Error(1)
}

func (m *MockRenderer) Name() string { return "mock" }

func (m *MockRenderer) Close() error { return nil }

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Store(ctx context.Context, req *infra.StoreRequest) (*infra.StoreResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.StoreResult), args.Error(1)
}

func (m *MockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	args := m.Called(ctx, age)
	return args.Int(0), args.Error(1)
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockTemplates struct {
	mock.Mock
}

func (m *MockTemplates) Render(ctx context.Context, view *infra.View) (string, error) {
	args := m.Called(ctx, view)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordReplay(ctx context.Context, docType string) {
	m.Called(ctx, docType)
}

func (m *MockMetrics) RecordRender(ctx context.Context, engine string, d time.Duration) {
	m.Called(ctx, engine, d)
}

func (m *MockMetrics) RecordFailure(ctx context.Context, docType, stage string) {
	m.Called(ctx, docType, stage)
}
