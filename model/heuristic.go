package model

import (
	"fmt"

	"github.com/rushteam/contentrec/core"
	"github.com/rushteam/contentrec/feature"
)

// recencyWindowDays 启发式时新分量的线性衰减窗口（天）。
const recencyWindowDays = 30.0

// Heuristic 是确定性的启发式兜底打分器，与可训练模型消费同一份拼接向量。
//
// 打分公式（各分量贡献上限由权重包络控制，默认 0.3/0.3/0.2/0.2）：
//   - 热度：热度比例 * W.Popularity
//   - 时新：30 天线性衰减 * W.Recency（从内容向量的指数衰减槽位反解天数）
//   - 精选：编辑精选时加 W.Featured
//   - 偏好：消费者类目占比均值 * W.Affinity
//
// 结果截断到 [0,1]。给定相同输入与固定抖动种子，输出恒定。
type Heuristic struct {
	Weights core.HeuristicWeights
}

// NewHeuristic 创建启发式打分器。
func NewHeuristic(weights core.HeuristicWeights) *Heuristic {
	return &Heuristic{Weights: weights}
}

func (m *Heuristic) Name() string { return "heuristic" }

// Predict 对拼接向量（消费者在前、内容在后）打分。
func (m *Heuristic) Predict(features []float64) (float64, error) {
	if len(features) != core.ConsumerVectorLen+core.ItemVectorLen {
		return 0, core.NewDomainError(core.ModuleModel, core.ErrorCodeFeatureExtraction,
			fmt.Sprintf("heuristic: feature dim %d does not match expected %d",
				len(features), core.ConsumerVectorLen+core.ItemVectorLen))
	}

	itemOff := core.ConsumerVectorLen
	score := 0.0

	// 热度分量
	score += features[itemOff+core.SlotItemPopularity] * m.Weights.Popularity

	// 时新分量：30 天线性衰减
	age := feature.RecencyAgeDays(features[itemOff+core.SlotItemRecency])
	if age < recencyWindowDays {
		score += (1 - age/recencyWindowDays) * m.Weights.Recency
	}

	// 编辑精选分量
	if features[itemOff+core.SlotItemFeatured] > 0 {
		score += m.Weights.Featured
	}

	// 消费者类目偏好分量：top 类目占比均值
	sum := 0.0
	for i := 0; i < core.TopCategoryShares; i++ {
		sum += features[core.SlotConsumerShare0+i]
	}
	score += sum / core.TopCategoryShares * m.Weights.Affinity

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}
