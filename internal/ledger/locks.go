package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// lockTable hands out one exclusive lock per entity ID so that writes
// against the same payment or income event are serialized.
type lockTable struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*semaphore.Weighted
}

func newLockTable() *lockTable {
	return &lockTable{
		locks: make(map[uuid.UUID]*semaphore.Weighted),
	}
}

func (t *lockTable) get(id uuid.UUID) *semaphore.Weighted {
	t.mu.Lock()
	defer t.mu.Unlock()

	lock, ok := t.locks[id]
	if !ok {
		lock = semaphore.NewWeighted(1)
		t.locks[id] = lock
	}

	return lock
}

// acquire locks all IDs within the timeout and returns a release function.
// The IDs are locked in a stable order so that two writers touching the
// same pair can not deadlock each other.
func (t *lockTable) acquire(timeout time.Duration, ids ...uuid.UUID) (func(), error) {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	held := make([]*semaphore.Weighted, 0, len(sorted))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Release(1)
		}
	}

	for _, id := range sorted {
		lock := t.get(id)
		if err := lock.Acquire(ctx, 1); err != nil {
			release()
			return nil, err
		}

		held = append(held, lock)
	}

	return release, nil
}
