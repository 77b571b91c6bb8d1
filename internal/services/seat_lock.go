package services

import (
	"sync"
	"time"
)

// seatLockTable serializes booking and cancellation work per (bus, date) key.
// Each key owns a capacity-1 channel acting as a mutex so acquisition can be
// bounded by a timeout; unrelated keys never contend. Entries are reference
// counted and removed once the last holder releases, keeping the table from
// growing with every date ever booked.
type seatLockTable struct {
	mu    sync.Mutex
	locks map[string]*seatLock
}

type seatLock struct {
	sem  chan struct{}
	refs int
}

func newSeatLockTable() *seatLockTable {
	return &seatLockTable{locks: make(map[string]*seatLock)}
}

// lockKey builds the serialization key for a bus and calendar date
func lockKey(busID string, date time.Time) string {
	return busID + "|" + date.Format("2006-01-02")
}

// Acquire obtains the lock for key, waiting at most wait. It returns false if
// the lock could not be acquired within the bound.
func (t *seatLockTable) Acquire(key string, wait time.Duration) bool {
	t.mu.Lock()
	l, ok := t.locks[key]
	if !ok {
		l = &seatLock{sem: make(chan struct{}, 1)}
		t.locks[key] = l
	}
	l.refs++
	t.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case l.sem <- struct{}{}:
		return true
	case <-timer.C:
		t.release(key, false)
		return false
	}
}

// Release frees the lock for key. Must be called exactly once per successful
// Acquire, on every exit path.
func (t *seatLockTable) Release(key string) {
	t.release(key, true)
}

func (t *seatLockTable) release(key string, held bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[key]
	if !ok {
		return
	}

	if held {
		<-l.sem
	}

	l.refs--
	if l.refs <= 0 {
		delete(t.locks, key)
	}
}
