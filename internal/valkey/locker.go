package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/emberhollow/hearth/internal/cleanup"
	"github.com/emberhollow/hearth/pkg/errors"

	"github.com/valkey-io/valkey-go"
)

// lockTTL bounds how long an abandoned lock can linger if a process dies
// without releasing it.
const lockTTL = 10 * time.Minute

// Locker serializes cleanup operations across processes using a Valkey
// advisory lock (SET NX EX per resource kind).
type Locker struct {
	client valkey.Client
}

func NewLocker(svc *Service) *Locker {
	return &Locker{client: svc.GetClient()}
}

func lockKey(kind string) string {
	return fmt.Sprintf("cleanup:lock:%s", kind)
}

func (l *Locker) TryLock(ctx context.Context, kind string) (func(), error) {
	key := lockKey(kind)

	resp := l.client.Do(ctx, l.client.B().Set().Key(key).Value("1").Nx().Ex(lockTTL).Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			// SET NX returns nil when the key already exists.
			return nil, cleanup.ErrLockHeld
		}
		return nil, errors.Wrap(err, "could not acquire cleanup lock")
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.client.Do(ctx, l.client.B().Del().Key(key).Build())
	}
	return release, nil
}
