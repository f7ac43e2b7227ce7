package rerank

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/contentrec/core"
)

func testThresholds() core.Thresholds {
	return core.Thresholds{HighRelevance: 0.8, Popular: 500}
}

func selectNow() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func scored(id, category string, score float64) *core.Candidate {
	c := core.NewCandidate(&core.ContentItem{ID: id, Category: category})
	c.Score = score
	return c
}

func mustSelectNode(t *testing.T, min, max int) *SelectNode {
	t.Helper()
	n, err := NewSelectNode(min, max, testThresholds())
	if err != nil {
		t.Fatal(err)
	}
	n.Now = selectNow
	return n
}

func TestNewSelectNode_Validation(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		wantErr  bool
	}{
		{"valid bounds", 3, 10, false},
		{"zero max", 3, 0, true},
		{"negative max", 0, -1, true},
		{"min exceeds max", 10, 3, true},
		{"negative min clamped", -5, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSelectNode(tt.min, tt.max, testThresholds())
			if tt.wantErr {
				if !core.IsInvalidConfig(err) {
					t.Errorf("want INVALID_CONFIG, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSelectNode_EmptyInput(t *testing.T) {
	n := mustSelectNode(t, 3, 10)
	out, err := n.Process(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("len = %d, want 0", len(out))
	}
}

func TestSelectNode_FewerThanMin(t *testing.T) {
	n := mustSelectNode(t, 5, 10)
	cands := []*core.Candidate{
		scored("a", "news", 0.9),
		scored("b", "tech", 0.8),
	}
	out, err := n.Process(context.Background(), nil, cands)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Errorf("len = %d, want all available candidates", len(out))
	}
}

func TestSelectNode_CategoryDiversity(t *testing.T) {
	// 6 news candidates on top, then one tech and one sports; with max 5
	// the category pass must admit tech and sports over lower-ranked news
	n := mustSelectNode(t, 0, 5)
	cands := []*core.Candidate{
		scored("n1", "news", 0.95),
		scored("n2", "news", 0.90),
		scored("n3", "news", 0.85),
		scored("n4", "news", 0.84),
		scored("n5", "news", 0.83),
		scored("n6", "news", 0.82),
		scored("t1", "tech", 0.60),
		scored("s1", "sports", 0.50),
	}
	out, err := n.Process(context.Background(), nil, cands)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 5 {
		t.Fatalf("len = %d, want 5", len(out))
	}
	ids := map[string]bool{}
	for _, c := range out {
		ids[c.Item.ID] = true
	}
	if !ids["t1"] || !ids["s1"] {
		t.Errorf("diverse candidates missing from selection: %v", ids)
	}
	// first three are unconditional head slots
	if out[0].Item.ID != "n1" || out[1].Item.ID != "n2" || out[2].Item.ID != "n3" {
		t.Errorf("head slots = %s, %s, %s", out[0].Item.ID, out[1].Item.ID, out[2].Item.ID)
	}
}

func TestSelectNode_SecondPassFills(t *testing.T) {
	// one category only: pass 1 admits the head floor, pass 2 fills to max
	n := mustSelectNode(t, 0, 5)
	cands := make([]*core.Candidate, 0, 8)
	for i := 0; i < 8; i++ {
		cands = append(cands, scored(string(rune('a'+i)), "news", 0.9-float64(i)*0.05))
	}
	out, err := n.Process(context.Background(), nil, cands)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 5 {
		t.Fatalf("len = %d, want 5", len(out))
	}
	// fill preserves score order
	want := []string{"a", "b", "c", "d", "e"}
	for i, id := range want {
		if out[i].Item.ID != id {
			t.Errorf("position %d = %s, want %s", i, out[i].Item.ID, id)
		}
	}
}

func TestSelectNode_Deterministic(t *testing.T) {
	n := mustSelectNode(t, 2, 4)
	build := func() []*core.Candidate {
		return []*core.Candidate{
			scored("a", "news", 0.9),
			scored("b", "tech", 0.8),
			scored("c", "news", 0.7),
			scored("d", "sports", 0.6),
			scored("e", "tech", 0.5),
		}
	}
	first, err := n.Process(context.Background(), nil, build())
	if err != nil {
		t.Fatal(err)
	}
	second, err := n.Process(context.Background(), nil, build())
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Item.ID != second[i].Item.ID {
			t.Errorf("position %d differs: %s vs %s", i, first[i].Item.ID, second[i].Item.ID)
		}
	}
}

func TestSelectNode_Reasons(t *testing.T) {
	n := mustSelectNode(t, 0, 10)

	highRel := scored("hr", "news", 0.95)
	popular := scored("pop", "tech", 0.5)
	popular.Item.Popularity = 600
	featured := scored("feat", "sports", 0.4)
	featured.Item.Featured = true
	recent := scored("rec", "life", 0.3)
	recent.Item.PublishedAt = selectNow().Add(-2 * time.Hour)
	plain := scored("plain", "misc", 0.2)

	out, err := n.Process(context.Background(), nil,
		[]*core.Candidate{highRel, popular, featured, recent, plain})
	if err != nil {
		t.Fatal(err)
	}

	wantReason := map[string]string{
		"hr":    ReasonHighRelevance,
		"pop":   ReasonPopular,
		"feat":  ReasonFeatured,
		"rec":   ReasonRecent,
		"plain": ReasonDefault,
	}
	for _, c := range out {
		reasons := c.Reasons()
		if len(reasons) == 0 {
			t.Errorf("%s has no reason", c.Item.ID)
			continue
		}
		if reasons[0] != wantReason[c.Item.ID] {
			t.Errorf("%s reason = %q, want %q", c.Item.ID, reasons[0], wantReason[c.Item.ID])
		}
	}
}

func TestSelectNode_MultipleReasons(t *testing.T) {
	n := mustSelectNode(t, 0, 10)
	c := scored("x", "news", 0.95)
	c.Item.Popularity = 1000
	c.Item.Featured = true

	out, err := n.Process(context.Background(), nil, []*core.Candidate{c})
	if err != nil {
		t.Fatal(err)
	}
	reasons := out[0].Reasons()
	if len(reasons) != 3 {
		t.Fatalf("reasons = %v, want 3 entries", reasons)
	}
	want := []string{ReasonHighRelevance, ReasonPopular, ReasonFeatured}
	for i, r := range want {
		if reasons[i] != r {
			t.Errorf("reason %d = %q, want %q", i, reasons[i], r)
		}
	}
}
