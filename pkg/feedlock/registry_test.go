package feedlock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAcquireSerializesSameLabel(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := r.Acquire("feed-a")
			defer release()
			time.Sleep(50 * time.Millisecond)
		}()
	}
	wg.Wait()

	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond, "two concurrent acquisitions of the same label must serialize, not overlap")
}

func TestAcquireDoesNotSerializeDifferentLabels(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	start := time.Now()

	for _, label := range []string{"feed-a", "feed-b"} {
		label := label
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := r.Acquire(label)
			defer release()
			time.Sleep(50 * time.Millisecond)
		}()
	}
	wg.Wait()

	elapsed := time.Since(start)
	assert.Less(t, elapsed, 100*time.Millisecond, "locks for different labels must not block each other")
}

func TestAcquireReleaseAllowsReentry(t *testing.T) {
	r := NewRegistry()

	release := r.Acquire("feed-a")
	release()

	done := make(chan struct{})
	go func() {
		release := r.Acquire("feed-a")
		release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second acquisition after release should not block")
	}
}

func TestLockForIsSafeUnderConcurrentFirstUse(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := r.Acquire("shared-label")
			release()
		}()
	}
	wg.Wait()
}
