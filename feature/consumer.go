package feature

import (
	"sort"
	"time"

	"github.com/rushteam/contentrec/core"
)

// activityWindowDays 活跃度统计窗口（天）。
const activityWindowDays = 7

// ConsumerExtractor 从消费者画像抽取定长消费者向量。
//
// 槽位语义：
//   - share_0..share_4：交互量最高的 5 个类目的交互占比（降序）
//   - engagement：交互总量按 ceiling 截断归一化
//   - recency：近 7 天交互占比
//   - 预留槽位恒为 0，抖动槽位由 (seed, consumerID) 派生
//
// 匿名/空画像返回仅含抖动的低信息量默认向量，这是"无信号"的兜底而非错误。
type ConsumerExtractor struct {
	cfg *core.Config

	// Now 时间源，默认 time.Now
	Now func() time.Time
}

// NewConsumerExtractor 创建消费者特征抽取器。
func NewConsumerExtractor(cfg *core.Config) *ConsumerExtractor {
	return &ConsumerExtractor{
		cfg: cfg,
		Now: time.Now,
	}
}

func (e *ConsumerExtractor) Name() string { return "feature.consumer" }

// Extract 抽取消费者向量。
func (e *ConsumerExtractor) Extract(profile *core.ConsumerProfile) core.FeatureVector {
	vec := make(core.FeatureVector, core.ConsumerVectorLen)
	if profile.Anonymous() {
		id := ""
		if profile != nil {
			id = profile.ConsumerID
		}
		vec[core.SlotConsumerJitter] = Jitter(e.cfg.JitterSeed, id)
		return vec
	}

	total := len(profile.Interactions)

	// 类目占比：按交互量降序，同量按类目名升序保证确定性
	counts := profile.CategoryCounts()
	type catCount struct {
		category string
		count    int
	}
	ranked := make([]catCount, 0, len(counts))
	for cat, n := range counts {
		ranked = append(ranked, catCount{category: cat, count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].category < ranked[j].category
	})
	for i := 0; i < core.TopCategoryShares && i < len(ranked); i++ {
		vec[core.SlotConsumerShare0+i] = float64(ranked[i].count) / float64(total)
	}

	// 交互量与活跃度
	engagement := float64(total)
	ceiling := float64(e.cfg.EngagementCeiling)
	if engagement > ceiling {
		engagement = ceiling
	}
	vec[core.SlotConsumerEngagement] = engagement / ceiling

	since := e.Now().AddDate(0, 0, -activityWindowDays)
	vec[core.SlotConsumerRecency] = float64(profile.RecentCount(since)) / float64(total)

	vec[core.SlotConsumerJitter] = Jitter(e.cfg.JitterSeed, profile.ConsumerID)
	return vec
}
