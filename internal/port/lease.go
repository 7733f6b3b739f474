package port

import "context"

// Lease guards a single active worker across replicas.
type Lease interface {
	// Acquire takes or refreshes the lease. It returns false when another holder owns it.
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}
