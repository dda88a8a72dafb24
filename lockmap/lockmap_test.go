package lockmap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type key struct {
	dev, ino uint64
}

func TestAcquireRelease(t *testing.T) {
	lmap := MkLockMap()
	k := key{1, 2}
	assert.False(t, lmap.Held(k))
	lmap.Acquire(k)
	assert.True(t, lmap.Held(k))
	assert.False(t, lmap.Held(key{1, 3}), "locks are per key")
	lmap.Release(k)
	assert.False(t, lmap.Held(k))
	assert.Equal(t, 0, len(lmap.state), "idle locks are dropped")
}

func TestReleaseUnheld(t *testing.T) {
	lmap := MkLockMap()
	assert.Panics(t, func() { lmap.Release(key{}) })
}

func TestMutualExclusion(t *testing.T) {
	lmap := MkLockMap()
	k := key{7, 7}
	const n = 50
	counter := 0
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				lmap.Acquire(k)
				c := counter
				counter = c + 1
				lmap.Release(k)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, n*100, counter)
	assert.False(t, lmap.Held(k))
}
