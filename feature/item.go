package feature

import (
	"math"
	"sort"
	"time"

	"github.com/rushteam/contentrec/core"
)

// recencyHalfLifeDays 内容时新度的衰减常数（天）：exp(-days/7)。
const recencyHalfLifeDays = 7.0

// ItemExtractor 从原始内容抽取定长内容向量。
//
// 设计要点：
//   - 纯函数：无副作用、无 I/O；时间源可注入便于测试
//   - 缺失/畸形字段一律按零值兜底，不报错
//   - 抖动项由 (seed, item.ID) 确定性派生
type ItemExtractor struct {
	cfg *core.Config

	// categoryIndex 类目在权重表中的序号（按 key 排序），用于归一化类目槽位
	categoryIndex map[string]int

	// Now 时间源，默认 time.Now；测试中注入固定时间
	Now func() time.Time
}

// NewItemExtractor 创建内容特征抽取器。类目序号在构造时固定。
func NewItemExtractor(cfg *core.Config) *ItemExtractor {
	keys := make([]string, 0, len(cfg.CategoryWeights))
	for k := range cfg.CategoryWeights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}
	return &ItemExtractor{
		cfg:           cfg,
		categoryIndex: index,
		Now:           time.Now,
	}
}

func (e *ItemExtractor) Name() string { return "feature.item" }

// Extract 抽取内容向量。nil item 返回仅含抖动的默认向量。
func (e *ItemExtractor) Extract(item *core.ContentItem) core.FeatureVector {
	vec := make(core.FeatureVector, core.ItemVectorLen)
	if item == nil {
		vec[core.SlotItemCateWeight] = neutralCategoryWeight
		vec[core.SlotItemJitter] = Jitter(e.cfg.JitterSeed, "")
		return vec
	}

	vec[core.SlotItemPopularity] = cappedRatio(float64(item.Popularity), float64(e.cfg.PopularityCeiling))
	if item.Featured {
		vec[core.SlotItemFeatured] = 1
	}
	vec[core.SlotItemCategory] = e.categorySlot(item.Category)
	vec[core.SlotItemLength] = cappedRatio(float64(item.Length), float64(e.cfg.LengthCeiling))
	vec[core.SlotItemRecency] = e.recency(item.PublishedAt)
	vec[core.SlotItemCateWeight] = e.categoryWeight(item.Category)
	if item.Excerpt != "" {
		vec[core.SlotItemHasExcerpt] = 1
	}
	if item.HasImage {
		vec[core.SlotItemHasImage] = 1
	}
	vec[core.SlotItemTagCount] = cappedRatio(float64(len(item.Tags)), float64(e.cfg.TagCeiling))
	vec[core.SlotItemJitter] = Jitter(e.cfg.JitterSeed, item.ID)
	return vec
}

// neutralCategoryWeight 未知类目的中性权重。
const neutralCategoryWeight = 0.5

func (e *ItemExtractor) categoryWeight(category string) float64 {
	if w, ok := e.cfg.CategoryWeights[category]; ok {
		return clamp01(w)
	}
	return neutralCategoryWeight
}

func (e *ItemExtractor) categorySlot(category string) float64 {
	if len(e.categoryIndex) == 0 {
		return 0
	}
	idx, ok := e.categoryIndex[category]
	if !ok {
		return 0
	}
	return float64(idx) / float64(len(e.categoryIndex))
}

// recency 指数时间衰减：发布 0 天时为 1，随天数按 exp(-days/7) 衰减。
// 未来时间戳（上游时钟漂移）按刚发布处理。
func (e *ItemExtractor) recency(publishedAt time.Time) float64 {
	if publishedAt.IsZero() {
		return 0
	}
	days := e.Now().Sub(publishedAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Exp(-days / recencyHalfLifeDays)
}

// RecencyAgeDays 从时新槽位反解发布天数，供启发式兜底换算 30 天线性衰减。
func RecencyAgeDays(recencySlot float64) float64 {
	if recencySlot <= 0 {
		return math.Inf(1)
	}
	if recencySlot >= 1 {
		return 0
	}
	return -recencyHalfLifeDays * math.Log(recencySlot)
}

func cappedRatio(v, ceiling float64) float64 {
	if ceiling <= 0 || v <= 0 {
		return 0
	}
	r := v / ceiling
	if r > 1 {
		return 1
	}
	return r
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
