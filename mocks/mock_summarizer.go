package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docworker/internal/port"
)

// MockSummarizer is a mock implementation of port.Summarizer and port.InstructedSummarizer.
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

func (m *MockSummarizer) SummarizeWithInstruction(ctx context.Context, text, instruction string) (string, error) {
	args := m.Called(ctx, text, instruction)
	return args.String(0), args.Error(1)
}

// MockCompleter is a mock implementation of port.Completer.
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
