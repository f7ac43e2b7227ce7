// Package dsl 提供基于 CEL (Common Expression Language) 的候选规则求值器。
// CEL 是 Google 开发的表达式语言，具有类型安全、高性能、线程安全等特性。
//
// 表达式可引用三个变量：
//   - item：候选内容，如 item.category == "tech"、item.score > 0.7、item.featured
//   - label：候选标签（值为字符串），如 label.scored_by == "heuristic"
//   - rctx：请求上下文，如 rctx.consumer_id != ""
//
// 示例：
//   - `item.category == "ads"` → 类目为 ads
//   - `item.featured && item.score > 0.5` → 精选且分数 > 0.5
//   - `label.scored_by.contains("lr")` → 由 LR 模型打分
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/contentrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	if celEnv == nil && err == nil {
		err = fmt.Errorf("cel environment not initialized")
	}
	return celEnv, err
}

// Rule 是一条编译好的候选规则。编译一次，线程安全地多次求值。
type Rule struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；语法错误在构造期暴露，而不是每次求值时。
func Compile(expr string) (*Rule, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Rule{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式（用于日志/标签）。
func (r *Rule) Expr() string { return r.expr }

// Eval 对单个候选求值，返回布尔结果。求值错误按不命中处理并返回错误供调用方记录。
func (r *Rule) Eval(cand *core.Candidate, rctx *core.RecommendContext) (bool, error) {
	out, _, err := r.prg.Eval(buildInput(cand, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", r.expr, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: result is not bool", r.expr)
	}
	return b, nil
}

// buildInput 把候选/上下文展开成 CEL 可见的 map 结构。
func buildInput(cand *core.Candidate, rctx *core.RecommendContext) map[string]any {
	item := map[string]any{
		"id":         "",
		"category":   "",
		"popularity": int64(0),
		"featured":   false,
		"has_image":  false,
		"score":      0.0,
		"tags":       []string{},
	}
	label := map[string]any{}

	if cand != nil {
		item["score"] = cand.Score
		if cand.Item != nil {
			item["id"] = cand.Item.ID
			item["category"] = cand.Item.Category
			item["popularity"] = cand.Item.Popularity
			item["featured"] = cand.Item.Featured
			item["has_image"] = cand.Item.HasImage
			if cand.Item.Tags != nil {
				item["tags"] = cand.Item.Tags
			}
		}
		for k, v := range cand.Labels {
			label[k] = v.Value
		}
	}

	rctxMap := map[string]any{"consumer_id": ""}
	if rctx != nil {
		rctxMap["consumer_id"] = rctx.ConsumerID
	}

	return map[string]any{
		"item":  item,
		"label": label,
		"rctx":  rctxMap,
	}
}
