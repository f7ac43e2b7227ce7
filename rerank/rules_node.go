package rerank

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/contentrec/core"
	"github.com/rushteam/contentrec/pipeline"
	"github.com/rushteam/contentrec/pkg/dsl"
	"github.com/rushteam/contentrec/pkg/utils"
)

// RulesNode 是规则 Node：在选取之前执行编辑侧的 CEL 规则。
//
// 规则分两类：
//   - exclude：命中即剔除候选（如屏蔽某类目）
//   - boost：命中即加分，结果截断回 [0,1]（如临时推某专题）
//
// 单条规则求值失败按不命中处理并记日志，不影响其余候选。
// boost 改变分数后会重新做确定性排序，保证后续选取的输入契约。
type RulesNode struct {
	exclude []*dsl.Rule
	boost   []boostRule
	logger  zerolog.Logger

	// resort 重新排序回调，由构造方注入（避免 rerank 依赖 rank）
	resort func([]*core.Candidate)
}

type boostRule struct {
	rule   *dsl.Rule
	amount float64
}

// NewRulesNode 编译规则配置。任何表达式非法都是构造期 INVALID_CONFIG。
func NewRulesNode(cfg core.RulesConfig, resort func([]*core.Candidate), logger zerolog.Logger) (*RulesNode, error) {
	n := &RulesNode{logger: logger, resort: resort}
	for _, expr := range cfg.Exclude {
		r, err := dsl.Compile(expr)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleSelect, core.ErrorCodeInvalidConfig, err.Error())
		}
		n.exclude = append(n.exclude, r)
	}
	for _, b := range cfg.Boost {
		r, err := dsl.Compile(b.Expr)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleSelect, core.ErrorCodeInvalidConfig, err.Error())
		}
		n.boost = append(n.boost, boostRule{rule: r, amount: b.Amount})
	}
	return n, nil
}

// Empty 判断是否没有任何规则（编排层可据此跳过本 Node）。
func (n *RulesNode) Empty() bool {
	return len(n.exclude) == 0 && len(n.boost) == 0
}

func (n *RulesNode) Name() string        { return "rerank.rules" }
func (n *RulesNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *RulesNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(candidates) == 0 || n.Empty() {
		return candidates, nil
	}

	out := make([]*core.Candidate, 0, len(candidates))
	boosted := false

	for _, c := range candidates {
		if c == nil {
			continue
		}
		if n.matchAny(n.exclude, c, rctx) {
			continue
		}
		for _, b := range n.boost {
			ok, err := b.rule.Eval(c, rctx)
			if err != nil {
				n.logger.Warn().Err(err).Msg("boost rule eval failed")
				continue
			}
			if !ok {
				continue
			}
			c.Score = clamp01(c.Score + b.amount)
			c.PutLabel("boost_rule", utils.Label{Value: b.rule.Expr(), Source: "rule"})
			boosted = true
		}
		out = append(out, c)
	}

	if boosted && n.resort != nil {
		n.resort(out)
	}
	return out, nil
}

func (n *RulesNode) matchAny(rules []*dsl.Rule, c *core.Candidate, rctx *core.RecommendContext) bool {
	for _, r := range rules {
		ok, err := r.Eval(c, rctx)
		if err != nil {
			n.logger.Warn().Err(err).Msg("exclude rule eval failed")
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
