package cleanup

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire for the same kind is rejected", func(t *testing.T) {
		locker := NewLocalLocker()

		release, err := locker.TryLock(ctx, "posts")
		require.NoError(t, err)

		_, err = locker.TryLock(ctx, "posts")
		assert.ErrorIs(t, err, ErrLockHeld)

		release()

		release2, err := locker.TryLock(ctx, "posts")
		require.NoError(t, err)
		release2()
	})

	t.Run("different kinds do not contend", func(t *testing.T) {
		locker := NewLocalLocker()

		releasePosts, err := locker.TryLock(ctx, "posts")
		require.NoError(t, err)
		defer releasePosts()

		releaseGroups, err := locker.TryLock(ctx, "groups")
		require.NoError(t, err)
		releaseGroups()
	})

	t.Run("only one of many concurrent callers wins", func(t *testing.T) {
		locker := NewLocalLocker()

		var wg sync.WaitGroup
		var mu sync.Mutex
		winners := 0

		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := locker.TryLock(ctx, "posts"); err == nil {
					mu.Lock()
					winners++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, winners)
	})
}
