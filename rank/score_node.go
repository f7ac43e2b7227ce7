package rank

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/contentrec/core"
	"github.com/rushteam/contentrec/model"
	"github.com/rushteam/contentrec/pipeline"
	"github.com/rushteam/contentrec/pkg/utils"
)

// ScoreNode 是打分 Node：并发地对每个候选计算相关度分数。
//
// 打分路径：
//   - 主路径：Model 对拼接向量（消费者 + 内容）给出 [0,1] 分数
//   - 兜底路径：Model 为 nil（初始化失败/未配置）或单条预测出错时，
//     该候选改用 Fallback 启发式打分，单条失败不影响整批
//
// 候选间相互独立，按 MaxConcurrent 限流并发执行；完成顺序无关紧要，
// 最后统一做确定性排序：分数降序 -> 发布时间新者优先 -> ID 升序。
type ScoreNode struct {
	Model         model.RankModel // 可训练模型；nil 表示主路径不可用
	Fallback      *model.Heuristic
	MaxConcurrent int // 最大并发数（<=0 表示不限）
	Logger        zerolog.Logger
}

func (n *ScoreNode) Name() string        { return "rank.score" }
func (n *ScoreNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ScoreNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	var consumerVec core.FeatureVector
	if rctx != nil {
		consumerVec = rctx.ConsumerFeatures
	}
	if consumerVec == nil {
		consumerVec = make(core.FeatureVector, core.ConsumerVectorLen)
	}

	for _, cand := range candidates {
		c := cand
		eg.Go(func() error {
			if c == nil {
				return nil
			}
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}
			n.scoreOne(consumerVec, c)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	SortDeterministic(candidates)
	return candidates, nil
}

// scoreOne 对单个候选打分；模型失败只降级该候选，不向上传播。
func (n *ScoreNode) scoreOne(consumerVec core.FeatureVector, c *core.Candidate) {
	features := consumerVec.Concat(c.Features)

	if n.Model != nil {
		score, err := n.Model.Predict(features)
		if err == nil {
			c.Score = clampScore(score)
			c.PutLabel(core.LabelScoredBy, utils.Label{Value: n.Model.Name(), Source: "rank"})
			return
		}
		id := ""
		if c.Item != nil {
			id = c.Item.ID
		}
		n.Logger.Warn().Err(err).Str("item_id", id).Msg("model predict failed, falling back to heuristic")
	}

	score, err := n.Fallback.Predict(features)
	if err != nil {
		// 启发式也失败说明向量本身畸形，给零分保底
		score = 0
	}
	c.Score = clampScore(score)
	c.PutLabel(core.LabelScoredBy, utils.Label{Value: n.Fallback.Name(), Source: "rank"})
}

// SortDeterministic 做确定性排序：分数降序，平分时发布时间新者优先，再按 ID 升序。
func SortDeterministic(candidates []*core.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		at, bt := itemTime(a), itemTime(b)
		if at != bt {
			return at > bt
		}
		return itemID(a) < itemID(b)
	})
}

func itemTime(c *core.Candidate) int64 {
	if c.Item == nil || c.Item.PublishedAt.IsZero() {
		return 0
	}
	return c.Item.PublishedAt.UnixNano()
}

func itemID(c *core.Candidate) string {
	if c.Item == nil {
		return ""
	}
	return c.Item.ID
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
