package rerank

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/contentrec/core"
	"github.com/rushteam/contentrec/pipeline"
	"github.com/rushteam/contentrec/pkg/utils"
)

// 入选理由文案。候选可同时命中多条理由，按 Label 合并规则累积。
const (
	ReasonHighRelevance = "high relevance"
	ReasonPopular       = "popular"
	ReasonFeatured      = "editorial feature"
	ReasonRecent        = "recent"
	ReasonDefault       = "recommended for you"
)

// alwaysAllowFloor 头部小额放行位：前 3 个入选位不受类目约束。
const alwaysAllowFloor = 3

// recentWindow "recent" 理由的发布时间窗口。
const recentWindow = 24 * time.Hour

// SelectNode 是多样性选取 Node：在排好序的候选上做两遍类目感知选取。
//
// 算法：
//  1. 第一遍顺序扫描：满足 (已选 < MinCount) 或 (类目未覆盖) 或 (已选 < 3)
//     之一即入选，直到 MaxCount
//  2. 第二遍补位：若未选满 MaxCount，按分数顺序用未入选候选补足，不看类目
//  3. 给每个入选候选挂入选理由标签
//
// 输入必须已按分数确定性排序（rank.ScoreNode 的输出契约）。
// 候选不足 MinCount 时返回全部可用候选，不是错误；空输入输出空结果。
type SelectNode struct {
	MinCount   int
	MaxCount   int
	Thresholds core.Thresholds

	// Now 时间源，默认 time.Now；测试中注入固定时间
	Now func() time.Time
}

// NewSelectNode 创建选取 Node。MaxCount <= 0 或 MinCount > MaxCount 是调用方契约违规。
func NewSelectNode(minCount, maxCount int, thresholds core.Thresholds) (*SelectNode, error) {
	if maxCount <= 0 {
		return nil, core.NewDomainError(core.ModuleSelect, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("select: max_count must be positive, got %d", maxCount))
	}
	if minCount < 0 {
		minCount = 0
	}
	if minCount > maxCount {
		return nil, core.NewDomainError(core.ModuleSelect, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("select: min_count %d exceeds max_count %d", minCount, maxCount))
	}
	return &SelectNode{
		MinCount:   minCount,
		MaxCount:   maxCount,
		Thresholds: thresholds,
		Now:        time.Now,
	}, nil
}

func (n *SelectNode) Name() string        { return "rerank.select" }
func (n *SelectNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *SelectNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(candidates) == 0 {
		return []*core.Candidate{}, nil
	}

	selected := make([]*core.Candidate, 0, n.MaxCount)
	taken := make(map[int]bool, n.MaxCount)
	seenCate := make(map[string]bool, 8)

	// 第一遍：类目感知选取
	for i, c := range candidates {
		if len(selected) >= n.MaxCount {
			break
		}
		if c == nil {
			continue
		}
		cate := category(c)
		switch {
		case len(selected) < n.MinCount,
			!seenCate[cate],
			len(selected) < alwaysAllowFloor:
			selected = append(selected, c)
			taken[i] = true
			seenCate[cate] = true
		}
	}

	// 第二遍：按分数顺序补位到 MaxCount
	for i, c := range candidates {
		if len(selected) >= n.MaxCount {
			break
		}
		if c == nil || taken[i] {
			continue
		}
		selected = append(selected, c)
		taken[i] = true
	}

	now := n.Now()
	for _, c := range selected {
		n.attachReasons(c, now)
	}
	return selected, nil
}

// attachReasons 给入选候选挂理由标签；一条都不命中时给默认理由。
func (n *SelectNode) attachReasons(c *core.Candidate, now time.Time) {
	matched := false
	put := func(reason string) {
		c.PutLabel(core.LabelReason, utils.Label{Value: reason, Source: "select"})
		matched = true
	}

	if c.Score > n.Thresholds.HighRelevance {
		put(ReasonHighRelevance)
	}
	if c.Item != nil {
		if c.Item.Popularity > n.Thresholds.Popular {
			put(ReasonPopular)
		}
		if c.Item.Featured {
			put(ReasonFeatured)
		}
		if !c.Item.PublishedAt.IsZero() && now.Sub(c.Item.PublishedAt) < recentWindow {
			put(ReasonRecent)
		}
	}
	if !matched {
		put(ReasonDefault)
	}
}

func category(c *core.Candidate) string {
	if c.Item == nil {
		return ""
	}
	return c.Item.Category
}
