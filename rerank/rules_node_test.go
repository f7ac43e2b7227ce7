package rerank

import (
	"context"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rushteam/contentrec/core"
)

func resortByScore(cands []*core.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})
}

func TestNewRulesNode(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		n, err := NewRulesNode(core.RulesConfig{}, resortByScore, zerolog.Nop())
		if err != nil {
			t.Fatal(err)
		}
		if !n.Empty() {
			t.Error("node with no rules should report Empty")
		}
	})

	t.Run("bad exclude expression", func(t *testing.T) {
		_, err := NewRulesNode(core.RulesConfig{
			Exclude: []string{`item.category ===`},
		}, resortByScore, zerolog.Nop())
		if !core.IsInvalidConfig(err) {
			t.Errorf("want INVALID_CONFIG, got %v", err)
		}
	})

	t.Run("bad boost expression", func(t *testing.T) {
		_, err := NewRulesNode(core.RulesConfig{
			Boost: []core.BoostRule{{Expr: `(`, Amount: 0.1}},
		}, resortByScore, zerolog.Nop())
		if !core.IsInvalidConfig(err) {
			t.Errorf("want INVALID_CONFIG, got %v", err)
		}
	})
}

func TestRulesNode_Exclude(t *testing.T) {
	n, err := NewRulesNode(core.RulesConfig{
		Exclude: []string{`item.category == "ads"`},
	}, resortByScore, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	cands := []*core.Candidate{
		scored("a", "news", 0.9),
		scored("b", "ads", 0.8),
		scored("c", "tech", 0.7),
	}
	out, err := n.Process(context.Background(), nil, cands)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	for _, c := range out {
		if c.Item.Category == "ads" {
			t.Error("excluded candidate survived")
		}
	}
}

func TestRulesNode_BoostAndResort(t *testing.T) {
	n, err := NewRulesNode(core.RulesConfig{
		Boost: []core.BoostRule{{Expr: `item.category == "tech"`, Amount: 0.5}},
	}, resortByScore, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	cands := []*core.Candidate{
		scored("a", "news", 0.6),
		scored("b", "tech", 0.4),
	}
	out, err := n.Process(context.Background(), nil, cands)
	if err != nil {
		t.Fatal(err)
	}
	// boosted tech candidate overtakes news
	if out[0].Item.ID != "b" {
		t.Errorf("head = %s, want b", out[0].Item.ID)
	}
	if out[0].Score != 0.9 {
		t.Errorf("boosted score = %v, want 0.9", out[0].Score)
	}
	if lbl, ok := out[0].GetLabel("boost_rule"); !ok || lbl.Value == "" {
		t.Error("boosted candidate missing boost_rule label")
	}
}

func TestRulesNode_BoostClampsToOne(t *testing.T) {
	n, err := NewRulesNode(core.RulesConfig{
		Boost: []core.BoostRule{{Expr: `item.featured`, Amount: 0.9}},
	}, resortByScore, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	c := scored("a", "news", 0.8)
	c.Item.Featured = true
	out, err := n.Process(context.Background(), nil, []*core.Candidate{c})
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Score != 1 {
		t.Errorf("score = %v, want clamp to 1", out[0].Score)
	}
}

func TestRulesNode_ConsumerContext(t *testing.T) {
	n, err := NewRulesNode(core.RulesConfig{
		Exclude: []string{`rctx.consumer_id == "blocked"`},
	}, resortByScore, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	rctx := &core.RecommendContext{ConsumerID: "blocked"}
	out, err := n.Process(context.Background(), rctx, []*core.Candidate{scored("a", "news", 0.9)})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Errorf("len = %d, want 0 for blocked consumer", len(out))
	}
}
