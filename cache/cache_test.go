package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rushteam/contentrec/core"
)

func items(ids ...string) []*core.ContentItem {
	out := make([]*core.ContentItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, &core.ContentItem{ID: id})
	}
	return out
}

func someRec() *core.Recommendation {
	return core.NewRecommendation([]*core.Candidate{
		core.NewCandidate(&core.ContentItem{ID: "a", Category: "news"}),
	})
}

func TestNewKey(t *testing.T) {
	t.Run("order independent", func(t *testing.T) {
		k1 := NewKey("u1", items("a", "b", "c"), 3, 10)
		k2 := NewKey("u1", items("c", "a", "b"), 3, 10)
		if k1 != k2 {
			t.Error("same candidate set in different order should hash equal")
		}
	})

	t.Run("bounds are part of the key", func(t *testing.T) {
		k1 := NewKey("u1", items("a", "b"), 3, 10)
		k2 := NewKey("u1", items("a", "b"), 3, 5)
		if k1 == k2 {
			t.Error("different bounds should produce different keys")
		}
	})

	t.Run("consumer is part of the key", func(t *testing.T) {
		k1 := NewKey("u1", items("a"), 0, 5)
		k2 := NewKey("u2", items("a"), 0, 5)
		if k1 == k2 {
			t.Error("different consumers should produce different keys")
		}
	})

	t.Run("different sets differ", func(t *testing.T) {
		k1 := NewKey("u1", items("a", "b"), 0, 5)
		k2 := NewKey("u1", items("a", "c"), 0, 5)
		if k1 == k2 {
			t.Error("different candidate sets should produce different keys")
		}
	})
}

func TestCache_GetOrCompute(t *testing.T) {
	c := New()
	key := NewKey("u1", items("a"), 0, 5)
	var calls atomic.Int32

	compute := func(ctx context.Context) (*core.Recommendation, error) {
		calls.Add(1)
		return someRec(), nil
	}

	first, err := c.GetOrCompute(context.Background(), key, time.Minute, compute)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.GetOrCompute(context.Background(), key, time.Minute, compute)
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 1 {
		t.Errorf("compute calls = %d, want 1", calls.Load())
	}
	if first != second {
		t.Error("cached result should be the same object")
	}
}

func TestCache_SingleFlight(t *testing.T) {
	c := New()
	key := NewKey("u1", items("a"), 0, 5)

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func(ctx context.Context) (*core.Recommendation, error) {
		calls.Add(1)
		<-release
		return someRec(), nil
	}

	const n = 16
	var wg sync.WaitGroup
	results := make([]*core.Recommendation, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec, err := c.GetOrCompute(context.Background(), key, time.Minute, compute)
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = rec
		}(i)
	}

	// let every goroutine join the flight before releasing the compute
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("compute calls = %d, want 1 for concurrent identical queries", calls.Load())
	}
	for i := 1; i < n; i++ {
		if results[i] != results[0] {
			t.Fatal("waiters should share the same computed result")
		}
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New()
	key := NewKey("u1", items("a"), 0, 5)
	var calls atomic.Int32
	compute := func(ctx context.Context) (*core.Recommendation, error) {
		calls.Add(1)
		return someRec(), nil
	}

	if _, err := c.GetOrCompute(context.Background(), key, 20*time.Millisecond, compute); err != nil {
		t.Fatal(err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, ok := c.Get(key); ok {
		t.Error("expired entry should read as a miss")
	}
	if _, err := c.GetOrCompute(context.Background(), key, time.Minute, compute); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("compute calls = %d, want recompute after expiry", calls.Load())
	}
}

func TestCache_ErrorsNotCached(t *testing.T) {
	c := New()
	key := NewKey("u1", items("a"), 0, 5)

	fail := true
	compute := func(ctx context.Context) (*core.Recommendation, error) {
		if fail {
			return nil, errors.New("upstream down")
		}
		return someRec(), nil
	}

	_, err := c.GetOrCompute(context.Background(), key, time.Minute, compute)
	if !core.IsCacheCompute(err) {
		t.Fatalf("want CACHE_COMPUTE, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("failed compute should not be cached")
	}

	// immediate retry succeeds once the upstream recovers
	fail = false
	if _, err := c.GetOrCompute(context.Background(), key, time.Minute, compute); err != nil {
		t.Fatal(err)
	}
}

func TestCache_NoTTLSkipsStore(t *testing.T) {
	c := New()
	key := NewKey("u1", items("a"), 0, 5)
	compute := func(ctx context.Context) (*core.Recommendation, error) {
		return someRec(), nil
	}
	if _, err := c.GetOrCompute(context.Background(), key, 0, compute); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Error("ttl <= 0 should not persist the result")
	}
}

func TestCache_CallerCancellation(t *testing.T) {
	c := New()
	key := NewKey("u1", items("a"), 0, 5)

	started := make(chan struct{})
	release := make(chan struct{})
	var sawCancel atomic.Bool
	compute := func(ctx context.Context) (*core.Recommendation, error) {
		close(started)
		<-release
		if ctx.Err() != nil {
			sawCancel.Store(true)
		}
		return someRec(), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.GetOrCompute(ctx, key, time.Minute, compute)
		done <- err
	}()

	<-started
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("caller should observe cancellation, got %v", err)
	}

	// the in-flight compute keeps going and publishes its result
	close(release)
	deadline := time.After(time.Second)
	for {
		if _, ok := c.Get(key); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("detached compute never published its result")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if sawCancel.Load() {
		t.Error("compute context should be detached from the caller")
	}
}

func TestCache_InvalidateAndPurge(t *testing.T) {
	c := New()
	k1 := NewKey("u1", items("a"), 0, 5)
	k2 := NewKey("u2", items("a"), 0, 5)
	compute := func(ctx context.Context) (*core.Recommendation, error) {
		return someRec(), nil
	}
	_, _ = c.GetOrCompute(context.Background(), k1, time.Minute, compute)
	_, _ = c.GetOrCompute(context.Background(), k2, time.Minute, compute)

	c.Invalidate(k1)
	if _, ok := c.Get(k1); ok {
		t.Error("invalidated key should miss")
	}
	if _, ok := c.Get(k2); !ok {
		t.Error("other keys should survive invalidation")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Error("purge should empty the cache")
	}
}
