// lockmap hands out one lock per key.
//
// The API is as if LockMap had a lock for every possible key; Acquire(k)
// blocks until the lock for k is free and takes it, Release(k) frees it.
// Only locks that are held or waited on take up space. simfs keys it by image
// identity, giving each image one coarse lock that callers hold around
// sequences of allocator and inode-cache operations.
package lockmap

import (
	"sync"
)

type lockState struct {
	held    bool
	cond    *sync.Cond
	waiters uint64
}

type LockMap struct {
	mu    *sync.Mutex
	state map[interface{}]*lockState
}

func MkLockMap() *LockMap {
	return &LockMap{
		mu:    new(sync.Mutex),
		state: make(map[interface{}]*lockState),
	}
}

// Acquire takes the lock for key, which must be comparable.
func (lmap *LockMap) Acquire(key interface{}) {
	lmap.mu.Lock()
	defer lmap.mu.Unlock()
	state, ok := lmap.state[key]
	if !ok {
		state = &lockState{cond: sync.NewCond(lmap.mu)}
		lmap.state[key] = state
	}
	for state.held {
		state.waiters += 1
		state.cond.Wait()
		state.waiters -= 1
	}
	state.held = true
}

func (lmap *LockMap) Release(key interface{}) {
	lmap.mu.Lock()
	defer lmap.mu.Unlock()
	state, ok := lmap.state[key]
	if !ok || !state.held {
		panic("release")
	}
	state.held = false
	if state.waiters > 0 {
		state.cond.Signal()
	} else {
		delete(lmap.state, key)
	}
}

// Held reports whether the lock for key is taken.
func (lmap *LockMap) Held(key interface{}) bool {
	lmap.mu.Lock()
	defer lmap.mu.Unlock()
	state, ok := lmap.state[key]
	return ok && state.held
}
