package core

import "time"

// Interaction 是消费者的一次历史交互记录。
type Interaction struct {
	ItemID    string
	Category  string
	Timestamp time.Time
	Strength  float64 // 交互强度：浏览 < 点赞 < 收藏，由上游定义
}

// ConsumerProfile 是消费者画像：打分链路的"全局上下文 + 特征源"。
//
// 设计要点：
//   - 引擎只读，不回写；画像归交互历史提供方所有
//   - ConsumerID 为空代表匿名消费者（得到低信息量默认向量，而非报错）
//   - Interactions 有序（按时间追加）
type ConsumerProfile struct {
	ConsumerID   string
	Interactions []Interaction
}

// NewConsumerProfile 创建一个空画像。
func NewConsumerProfile(consumerID string) *ConsumerProfile {
	return &ConsumerProfile{
		ConsumerID:   consumerID,
		Interactions: make([]Interaction, 0),
	}
}

// Anonymous 判断画像是否为匿名/空画像（无信号）。
func (p *ConsumerProfile) Anonymous() bool {
	return p == nil || len(p.Interactions) == 0
}

// CategoryCounts 统计各类目的交互次数。
func (p *ConsumerProfile) CategoryCounts() map[string]int {
	if p == nil {
		return nil
	}
	counts := make(map[string]int, 8)
	for _, it := range p.Interactions {
		if it.Category == "" {
			continue
		}
		counts[it.Category]++
	}
	return counts
}

// RecentCount 统计 since 之后的交互次数。
func (p *ConsumerProfile) RecentCount(since time.Time) int {
	if p == nil {
		return 0
	}
	n := 0
	for _, it := range p.Interactions {
		if it.Timestamp.After(since) {
			n++
		}
	}
	return n
}

// HasSeen 判断消费者是否与某条内容交互过（用于已读过滤）。
func (p *ConsumerProfile) HasSeen(itemID string) bool {
	if p == nil {
		return false
	}
	for _, it := range p.Interactions {
		if it.ItemID == itemID {
			return true
		}
	}
	return false
}
