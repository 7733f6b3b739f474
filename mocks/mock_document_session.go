package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"docworker/internal/domain"
)

// MockDocumentSession is a mock implementation of port.DocumentSession.
type MockDocumentSession struct {
	mock.Mock
}

func (m *MockDocumentSession) ListPending(ctx context.Context) ([]domain.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentSession) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DocumentStatus, reason string) error {
	args := m.Called(ctx, id, status, reason)
	return args.Error(0)
}

func (m *MockDocumentSession) UpdateTextAndSummary(ctx context.Context, id uuid.UUID, text, summary string) error {
	args := m.Called(ctx, id, text, summary)
	return args.Error(0)
}

func (m *MockDocumentSession) RequeueStale(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentSession) Close() error {
	args := m.Called()
	return args.Error(0)
}
