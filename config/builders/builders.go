// Package builders 通过 init 注册内置 Node 的配置构建器。
// 引入方式：import _ "github.com/rushteam/contentrec/config/builders"
package builders

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rushteam/contentrec/config"
	"github.com/rushteam/contentrec/core"
	"github.com/rushteam/contentrec/filter"
	"github.com/rushteam/contentrec/model"
	"github.com/rushteam/contentrec/pipeline"
	"github.com/rushteam/contentrec/pkg/conv"
	"github.com/rushteam/contentrec/rank"
	"github.com/rushteam/contentrec/rerank"
)

func init() {
	config.Register("filter.chain", BuildFilterNode)
	config.Register("rank.score", BuildScoreNode)
	config.Register("rerank.rules", BuildRulesNode)
	config.Register("rerank.select", BuildSelectNode)
}

// BuildFilterNode 构建过滤节点。目前仅支持 seen 过滤；
// 曝光过滤需要 Store 实例，不支持纯配置构建。
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filters := make([]filter.Filter, 0, 1)
	if conv.ConfigGet(cfg, "seen", true) {
		filters = append(filters, &filter.SeenFilter{})
	}
	if len(filters) == 0 {
		return nil, fmt.Errorf("filter.chain: no filters enabled")
	}
	return &filter.Node{Filters: filters, Logger: zerolog.Nop()}, nil
}

// BuildScoreNode 构建打分节点。model_path 缺失或加载失败时主路径为空，
// 打分永久走启发式兜底（与引擎降级语义一致）。
func BuildScoreNode(cfg map[string]any) (pipeline.Node, error) {
	vectorLen := conv.ConfigGetInt(cfg, "vector_len", core.ItemVectorLen)

	var rankModel model.RankModel
	if path := conv.ConfigGet(cfg, "model_path", ""); path != "" {
		if m, err := model.LoadLRModel(path, 2*vectorLen); err == nil {
			rankModel = m
		}
	}

	weights := core.HeuristicWeights{
		Popularity: conv.ConfigGetFloat64(cfg, "w_popularity", 0.3),
		Recency:    conv.ConfigGetFloat64(cfg, "w_recency", 0.3),
		Featured:   conv.ConfigGetFloat64(cfg, "w_featured", 0.2),
		Affinity:   conv.ConfigGetFloat64(cfg, "w_affinity", 0.2),
	}

	return &rank.ScoreNode{
		Model:         rankModel,
		Fallback:      model.NewHeuristic(weights),
		MaxConcurrent: conv.ConfigGetInt(cfg, "max_concurrent", 0),
		Logger:        zerolog.Nop(),
	}, nil
}

// BuildRulesNode 构建规则节点。表达式编译失败即构建失败。
func BuildRulesNode(cfg map[string]any) (pipeline.Node, error) {
	rc := core.RulesConfig{
		Exclude: conv.SliceAnyToString(cfg["exclude"]),
	}
	if raw, ok := cfg["boost"].([]any); ok {
		for _, e := range raw {
			m, ok := e.(map[string]any)
			if !ok {
				continue
			}
			expr := conv.ConfigGet(m, "expr", "")
			if expr == "" {
				return nil, fmt.Errorf("rerank.rules: boost rule missing expr")
			}
			rc.Boost = append(rc.Boost, core.BoostRule{
				Expr:   expr,
				Amount: conv.ConfigGetFloat64(m, "amount", 0),
			})
		}
	}
	return rerank.NewRulesNode(rc, rank.SortDeterministic, zerolog.Nop())
}

// BuildSelectNode 构建选取节点。
func BuildSelectNode(cfg map[string]any) (pipeline.Node, error) {
	minCount := conv.ConfigGetInt(cfg, "min_count", 0)
	maxCount := conv.ConfigGetInt(cfg, "max_count", 0)
	thresholds := core.Thresholds{
		HighRelevance: conv.ConfigGetFloat64(cfg, "high_relevance", 0.8),
		Popular:       int64(conv.ConfigGetInt(cfg, "popular", 500)),
	}
	return rerank.NewSelectNode(minCount, maxCount, thresholds)
}
