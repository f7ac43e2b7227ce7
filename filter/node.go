package filter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/contentrec/core"
	"github.com/rushteam/contentrec/pipeline"
)

// Node 是过滤 Node：串行执行一组 Filter，任一命中即剔除候选。
// 单个 Filter 出错时保守放行该候选并记日志；过滤永远不让整批失败。
type Node struct {
	Filters []Filter
	Logger  zerolog.Logger
}

func (n *Node) Name() string        { return "filter.chain" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *Node) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(candidates) == 0 || len(n.Filters) == 0 {
		return candidates, nil
	}

	out := make([]*core.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		drop := false
		for _, f := range n.Filters {
			hit, err := f.ShouldFilter(ctx, rctx, c)
			if err != nil {
				n.Logger.Warn().Err(err).Str("filter", f.Name()).Msg("filter failed, keeping candidate")
				continue
			}
			if hit {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, c)
		}
	}
	return out, nil
}
