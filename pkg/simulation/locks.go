package simulation

import (
	"context"
	"fmt"
	"sync"
)

// modelLocks serializes governance runs per model. Runs for different models
// proceed in parallel; a second run for the same model waits, and the caller
// may give up through its context. The lock is released by the deferred
// release func, so a run that fails (or panics through the defer) never
// leaves the lock held.
type modelLocks struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newModelLocks() *modelLocks {
	return &modelLocks{locks: make(map[string]chan struct{})}
}

// acquire takes the exclusive lock for modelID, waiting until it is free or
// ctx is done. The returned release func must be called exactly once.
func (l *modelLocks) acquire(ctx context.Context, modelID string) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[modelID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[modelID] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for model %s lock: %w", modelID, ctx.Err())
	}
}
