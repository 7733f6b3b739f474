package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docworker/internal/domain"
	"docworker/internal/port"
)

// MockDocumentProcessor is a mock implementation of service.DocumentProcessor.
type MockDocumentProcessor struct {
	mock.Mock
}

func (m *MockDocumentProcessor) Process(ctx context.Context, session port.DocumentSession, doc *domain.Document) error {
	args := m.Called(ctx, session, doc)
	return args.Error(0)
}
