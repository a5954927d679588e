// Package lock provides ingestion locks: an in-process one and a Redis-backed
// one for deployments where several replicas share a store.
package lock

import "context"

// Local is an in-process lock whose acquisition honors context cancellation
type Local struct {
	sem chan struct{}
}

// NewLocal creates a new in-process lock
func NewLocal() *Local {
	return &Local{sem: make(chan struct{}, 1)}
}

// Lock blocks until the lock is held or ctx is done
func (l *Local) Lock(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
