package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockLease is a mock implementation of port.Lease.
type MockLease struct {
	mock.Mock
}

func (m *MockLease) Acquire(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockLease) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
