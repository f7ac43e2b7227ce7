package core

import (
	"time"

	"github.com/rushteam/contentrec/pkg/utils"
)

// ContentItem 是内容池中的一条原始内容，由外部内容存储提供，引擎只读。
// 一次打分过程中视为不可变；缺失字段按零值处理而不报错。
type ContentItem struct {
	ID          string
	Category    string
	PublishedAt time.Time
	Popularity  int64    // 热度计数（浏览/点击等，由上游提供）
	Length      int      // 内容长度代理（字数/字节数）
	HasImage    bool
	Excerpt     string
	Tags        []string
	Featured    bool // 编辑精选标记
}

// Candidate 是选取链路中的统一承载结构：原始内容、特征、分数、标签。
// Labels 用于解释与策略驱动（入选理由、打分来源）；Score 用于排序决策。
type Candidate struct {
	Item     *ContentItem
	Score    float64
	Features FeatureVector
	Labels   map[string]utils.Label
}

func NewCandidate(item *ContentItem) *Candidate {
	return &Candidate{
		Item:   item,
		Score:  0,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (c *Candidate) PutLabel(key string, lbl utils.Label) {
	if c.Labels == nil {
		c.Labels = make(map[string]utils.Label)
	}
	if old, ok := c.Labels[key]; ok {
		c.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	c.Labels[key] = lbl
}

// GetLabel 获取 Label。
func (c *Candidate) GetLabel(key string) (utils.Label, bool) {
	if c.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := c.Labels[key]
	return lbl, ok
}

// Reasons 返回候选上以 reason 为 key 的入选理由列表（'|' 分隔的累积值展开）。
func (c *Candidate) Reasons() []string {
	lbl, ok := c.GetLabel(LabelReason)
	if !ok || lbl.Value == "" {
		return nil
	}
	out := make([]string, 0, 2)
	start := 0
	for i := 0; i <= len(lbl.Value); i++ {
		if i == len(lbl.Value) || lbl.Value[i] == '|' {
			if i > start {
				out = append(out, lbl.Value[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// 标准 Label key
const (
	LabelReason   = "reason"    // 入选理由（选取阶段写入）
	LabelScoredBy = "scored_by" // 打分来源：model / fallback
)
