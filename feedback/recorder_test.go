package feedback

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/contentrec/core"
	"github.com/rushteam/contentrec/store"
)

func event(itemID string, accepted bool) core.FeedbackEvent {
	return core.FeedbackEvent{
		ConsumerID: "u1",
		ItemID:     itemID,
		Accepted:   accepted,
		Timestamp:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMemoryRecorder_FIFO(t *testing.T) {
	r := NewMemoryRecorder(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		r.Record(ctx, event(fmt.Sprintf("item-%d", i), true))
	}
	if r.Len() != 3 {
		t.Fatalf("len = %d, want cap 3", r.Len())
	}

	// oldest two were evicted
	got := r.Drain(0)
	want := []string{"item-2", "item-3", "item-4"}
	if len(got) != len(want) {
		t.Fatalf("drained %d events, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ItemID != id {
			t.Errorf("event %d = %s, want %s", i, got[i].ItemID, id)
		}
	}
}

func TestMemoryRecorder_DrainLimit(t *testing.T) {
	r := NewMemoryRecorder(10)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		r.Record(ctx, event(fmt.Sprintf("item-%d", i), i%2 == 0))
	}

	first := r.Drain(2)
	if len(first) != 2 || first[0].ItemID != "item-0" || first[1].ItemID != "item-1" {
		t.Fatalf("first drain = %v", first)
	}
	if r.Len() != 3 {
		t.Errorf("len after drain = %d, want 3", r.Len())
	}

	rest := r.Drain(0)
	if len(rest) != 3 || rest[0].ItemID != "item-2" {
		t.Fatalf("second drain = %v", rest)
	}
	if r.Len() != 0 {
		t.Errorf("len after full drain = %d, want 0", r.Len())
	}
}

func TestMemoryRecorder_DefaultCap(t *testing.T) {
	r := NewMemoryRecorder(0)
	ctx := context.Background()
	for i := 0; i < 1100; i++ {
		r.Record(ctx, event(fmt.Sprintf("item-%d", i), true))
	}
	if r.Len() != 1000 {
		t.Errorf("len = %d, want default cap 1000", r.Len())
	}
}

func TestStoreRecorder_RoundTrip(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()

	r := NewStoreRecorder(ms, "", 16, zerolog.Nop())
	ctx := context.Background()

	r.Record(ctx, event("item-a", true))
	r.Record(ctx, event("item-b", false))
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	got := r.Drain(0)
	if len(got) != 2 {
		t.Fatalf("drained %d events, want 2", len(got))
	}
	byID := map[string]core.FeedbackEvent{}
	for _, ev := range got {
		byID[ev.ItemID] = ev
	}
	if ev, ok := byID["item-a"]; !ok || !ev.Accepted || ev.ConsumerID != "u1" {
		t.Errorf("item-a event = %+v", ev)
	}
	if ev, ok := byID["item-b"]; !ok || ev.Accepted {
		t.Errorf("item-b event = %+v", ev)
	}
}

func TestStoreRecorder_RecordAfterClose(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()

	r := NewStoreRecorder(ms, "fb", 16, zerolog.Nop())
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	// must not panic or block
	r.Record(context.Background(), event("late", true))
}

func TestStoreRecorder_CloseIdempotent(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()

	r := NewStoreRecorder(ms, "fb", 16, zerolog.Nop())
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second close = %v", err)
	}
}

func TestStoreRecorder_ConcurrentRecordAndClose(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()

	ctx := context.Background()
	for i := 0; i < 200; i++ {
		r := NewStoreRecorder(ms, "fb", 4, zerolog.Nop())

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				r.Record(ctx, event(fmt.Sprintf("item-%d", g), true))
			}(g)
		}
		if err := r.Close(); err != nil {
			t.Fatal(err)
		}
		wg.Wait()
	}
}
