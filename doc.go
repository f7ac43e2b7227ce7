// Package contentrec 是一个内容打分与选取引擎（Content Recommender）。
//
// 设计要点：
// - Pipeline-first: 选取逻辑通过 Node 串联（Filter → Rank → ReRank）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 规则驱动
// - 降级优先: 模型不可用时启发式兜底接管打分，调用方总能拿到结果
package contentrec

import "github.com/rushteam/contentrec/pipeline"

// 轻量 facade：便于用户直接 import "contentrec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
