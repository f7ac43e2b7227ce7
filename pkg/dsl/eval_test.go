package dsl

import (
	"testing"

	"github.com/rushteam/contentrec/core"
	"github.com/rushteam/contentrec/pkg/utils"
)

func candidate() *core.Candidate {
	c := core.NewCandidate(&core.ContentItem{
		ID:         "a1",
		Category:   "tech",
		Popularity: 800,
		Featured:   true,
		HasImage:   true,
		Tags:       []string{"go", "infra"},
	})
	c.Score = 0.75
	c.PutLabel(core.LabelScoredBy, utils.Label{Value: "heuristic", Source: "rank"})
	return c
}

func TestCompile(t *testing.T) {
	if _, err := Compile(`item.category == "tech"`); err != nil {
		t.Fatalf("valid expression failed to compile: %v", err)
	}
	if _, err := Compile(`item.category ===`); err == nil {
		t.Error("invalid expression should fail at compile time")
	}
}

func TestRule_Eval(t *testing.T) {
	rctx := &core.RecommendContext{ConsumerID: "u1"}

	tests := []struct {
		expr string
		want bool
	}{
		{`item.category == "tech"`, true},
		{`item.category == "news"`, false},
		{`item.popularity > 500`, true},
		{`item.featured && item.has_image`, true},
		{`item.score > 0.7`, true},
		{`item.score > 0.9`, false},
		{`"go" in item.tags`, true},
		{`label.scored_by == "heuristic"`, true},
		{`rctx.consumer_id == "u1"`, true},
		{`rctx.consumer_id == ""`, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			r, err := Compile(tt.expr)
			if err != nil {
				t.Fatal(err)
			}
			got, err := r.Eval(candidate(), rctx)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Eval(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestRule_EvalNilCandidate(t *testing.T) {
	r, err := Compile(`item.category == ""`)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.Eval(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("nil candidate should expose zero-value fields")
	}
}

func TestRule_NonBoolResult(t *testing.T) {
	r, err := Compile(`item.popularity + 1`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Eval(candidate(), nil); err == nil {
		t.Error("non-bool result should be an eval error")
	}
}
