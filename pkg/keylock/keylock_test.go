package keylock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocker_SerializesSameKey(t *testing.T) {
	l := New()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("resource:1")
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, l.Size())
}

func TestLocker_MultipleKeysInAnyOrder(t *testing.T) {
	l := New()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			unlock := l.Lock("b", "a")
			unlock()
		}
		close(done)
	}()
	for i := 0; i < 100; i++ {
		unlock := l.Lock("a", "b", "a")
		unlock()
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("deadlock between overlapping key sets")
	}
	assert.Equal(t, 0, l.Size())
}

func TestLocker_UnlockIsIdempotent(t *testing.T) {
	l := New()
	unlock := l.Lock("x")
	unlock()
	unlock()
	assert.Equal(t, 0, l.Size())
}
