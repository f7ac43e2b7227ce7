package config_test

import (
	"context"
	"testing"

	"github.com/rushteam/contentrec/config"
	_ "github.com/rushteam/contentrec/config/builders"
	"github.com/rushteam/contentrec/core"
	"github.com/rushteam/contentrec/pipeline"
)

func TestSupportedTypes(t *testing.T) {
	types := config.SupportedTypes()
	want := map[string]bool{
		"filter.chain":  false,
		"rank.score":    false,
		"rerank.rules":  false,
		"rerank.select": false,
	}
	for _, typ := range types {
		if _, ok := want[typ]; ok {
			want[typ] = true
		}
	}
	for typ, seen := range want {
		if !seen {
			t.Errorf("builtin node type %q not registered", typ)
		}
	}
}

func TestValidatePipelineConfig(t *testing.T) {
	valid := &pipeline.Config{}
	valid.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "filter.chain"},
		{Type: "rank.score"},
		{Type: "rerank.select", Config: map[string]any{"max_count": 10}},
	}
	if err := config.ValidatePipelineConfig(valid); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	invalid := &pipeline.Config{}
	invalid.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "recall.magic"}}
	if err := config.ValidatePipelineConfig(invalid); err == nil {
		t.Error("unknown node type should be rejected")
	}

	if err := config.ValidatePipelineConfig(nil); err != nil {
		t.Errorf("nil config should pass: %v", err)
	}
}

func TestBuildPipelineFromConfig(t *testing.T) {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Name = "frontpage"
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "filter.chain", Config: map[string]any{"seen": true}},
		{Type: "rank.score", Config: map[string]any{"max_concurrent": 4}},
		{Type: "rerank.rules", Config: map[string]any{
			"exclude": []any{`item.category == "ads"`},
		}},
		{Type: "rerank.select", Config: map[string]any{"min_count": 2, "max_count": 5}},
	}

	p, err := cfg.BuildPipeline(config.DefaultFactory())
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Nodes) != 4 {
		t.Fatalf("nodes = %d, want 4", len(p.Nodes))
	}

	// run the built pipeline end to end on a small pool
	cands := []*core.Candidate{}
	for _, item := range []*core.ContentItem{
		{ID: "a", Category: "news", Popularity: 900},
		{ID: "b", Category: "ads", Popularity: 800},
		{ID: "c", Category: "tech", Popularity: 400},
	} {
		c := core.NewCandidate(item)
		c.Features = make(core.FeatureVector, core.ItemVectorLen)
		cands = append(cands, c)
	}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, cands)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range out {
		if c.Item.Category == "ads" {
			t.Error("excluded category survived the configured pipeline")
		}
	}
	if len(out) != 2 {
		t.Errorf("len = %d, want 2", len(out))
	}
}

func TestBuildSelectNode_Invalid(t *testing.T) {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "rerank.select", Config: map[string]any{"max_count": 0}},
	}
	if _, err := cfg.BuildPipeline(config.DefaultFactory()); err == nil {
		t.Error("max_count 0 should fail the build")
	}
}
