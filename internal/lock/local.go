package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"golang.org/x/sync/semaphore"
)

// Local keeps one binary semaphore per key inside the process.
type Local struct {
	mu   sync.Mutex
	sems map[Key]*semaphore.Weighted
	wait time.Duration
}

func NewLocal(wait time.Duration) *Local {
	return &Local{
		sems: make(map[Key]*semaphore.Weighted),
		wait: wait,
	}
}

func (l *Local) semFor(key Key) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, ok := l.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[key] = sem
	}
	return sem
}

func (l *Local) Lock(ctx context.Context, key Key) (func(), error) {
	sem := l.semFor(key)

	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	if err := sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &domain.BusyError{Key: key.String()}
		}
		return nil, err
	}

	var once sync.Once
	return func() { once.Do(func() { sem.Release(1) }) }, nil
}

var _ Locker = (*Local)(nil)
