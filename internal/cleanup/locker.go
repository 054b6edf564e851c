package cleanup

import (
	"context"
	"sync"

	"github.com/emberhollow/hearth/pkg/errors"
)

// ErrLockHeld is returned when a cleanup for the same resource kind is
// already running. Callers are rejected rather than queued so two
// destructive passes can never interleave.
var ErrLockHeld = errors.New("cleanup already in progress")

// Locker serializes destructive operations per resource kind.
type Locker interface {
	// TryLock acquires the lock for a kind and returns the release func,
	// or ErrLockHeld if another holder is active.
	TryLock(ctx context.Context, kind string) (func(), error)
}

// LocalLocker serializes within a single process. It is the fallback used
// when valkey is not configured; multi-instance deployments should use the
// valkey locker so the guarantee holds across processes.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]bool)}
}

func (l *LocalLocker) TryLock(_ context.Context, kind string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[kind] {
		return nil, ErrLockHeld
	}
	l.held[kind] = true

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, kind)
	}, nil
}
