package core

import "time"

// Recommendation 是引擎的输出产物：有序候选子集 + 多样性摘要。
// 构建完成后不可变；缓存中保存的就是此对象。
type Recommendation struct {
	Items      []*Candidate
	Count      int
	Categories []string // 结果覆盖的类目集合（去重、按首次出现排序）
}

// NewRecommendation 从选取结果构建 Recommendation，并汇总类目覆盖。
func NewRecommendation(items []*Candidate) *Recommendation {
	if items == nil {
		items = make([]*Candidate, 0)
	}
	seen := make(map[string]bool, 8)
	cats := make([]string, 0, 8)
	for _, c := range items {
		if c == nil || c.Item == nil || c.Item.Category == "" {
			continue
		}
		if seen[c.Item.Category] {
			continue
		}
		seen[c.Item.Category] = true
		cats = append(cats, c.Item.Category)
	}
	return &Recommendation{
		Items:      items,
		Count:      len(items),
		Categories: cats,
	}
}

// FeedbackEvent 是消费者对某条推荐的反馈事件（接受/拒绝），仅用于离线重训。
type FeedbackEvent struct {
	ConsumerID string    `json:"consumer_id"`
	ItemID     string    `json:"item_id"`
	Accepted   bool      `json:"accepted"`
	Timestamp  time.Time `json:"timestamp"`
}
