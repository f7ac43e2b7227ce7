package filter

import (
	"context"

	"github.com/rushteam/contentrec/core"
)

// Filter 判断单个候选是否应被剔除。
// 返回 true 表示剔除；错误按"不剔除"处理，由 Node 统一记日志。
type Filter interface {
	Name() string
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, cand *core.Candidate) (bool, error)
}
