// Package lock provides per-username locking for settlement operations.
// Every validate -> debit -> engine -> credit sequence runs under the lock
// of the user it mutates, so two commands can never interleave balance
// reads and writes for the same account.
package lock

import (
	"context"
	"sync"
	"time"
)

// KeyedLock maps usernames to mutexes, creating them on demand.
type KeyedLock struct {
	locks sync.Map // map[string]*sync.Mutex
}

// NewKeyedLock creates a new KeyedLock instance.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{}
}

// get retrieves or creates the mutex for a username.
func (kl *KeyedLock) get(username string) *sync.Mutex {
	if v, ok := kl.locks.Load(username); ok {
		return v.(*sync.Mutex)
	}
	actual, _ := kl.locks.LoadOrStore(username, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// Lock acquires the lock for a username.
func (kl *KeyedLock) Lock(username string) {
	kl.get(username).Lock()
}

// Unlock releases the lock for a username.
func (kl *KeyedLock) Unlock(username string) {
	if v, ok := kl.locks.Load(username); ok {
		v.(*sync.Mutex).Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
func (kl *KeyedLock) TryLock(username string) bool {
	return kl.get(username).TryLock()
}

// WithLock executes fn while holding the username's lock.
func (kl *KeyedLock) WithLock(username string, fn func() error) error {
	kl.Lock(username)
	defer kl.Unlock(username)
	return fn()
}

// WithLockTimeout executes fn while holding the username's lock, giving up
// with ErrLockTimeout if the lock cannot be acquired in time.
func (kl *KeyedLock) WithLockTimeout(ctx context.Context, username string, timeout time.Duration, fn func() error) error {
	mu := kl.get(username)

	acquired := make(chan struct{})
	go func() {
		mu.Lock()
		close(acquired)
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-acquired:
		defer mu.Unlock()
		return fn()
	case <-timeoutCtx.Done():
		// The waiting goroutine will eventually acquire the mutex;
		// make sure it is released again.
		go func() {
			<-acquired
			mu.Unlock()
		}()
		return ErrLockTimeout
	}
}

// WithOrderedLocks locks two usernames in a deterministic order and runs fn.
// Used by transfers, which mutate two accounts; ordering prevents deadlock
// when two users transfer to each other concurrently.
func (kl *KeyedLock) WithOrderedLocks(a, b string, fn func() error) error {
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	kl.Lock(first)
	defer kl.Unlock(first)
	if second != first {
		kl.Lock(second)
		defer kl.Unlock(second)
	}
	return fn()
}
