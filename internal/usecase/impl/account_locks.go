package impl

import (
	"sync"

	"github.com/google/uuid"
)

// accountLocks serializes the check-send-stamp sequence per account, so two
// concurrent email requests for the same account cannot both pass the
// cooldown check before either stamps the cursor. Locks are small and keyed
// by account id; they are never evicted, which is bounded by the number of
// distinct accounts touched by one process.
type accountLocks struct {
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

// lock acquires the mutex for the account and returns its unlock func.
func (l *accountLocks) lock(id uuid.UUID) func() {
	val, _ := l.locks.LoadOrStore(id, &sync.Mutex{})
	mu, _ := val.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}
