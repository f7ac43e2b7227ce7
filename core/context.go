package core

import "github.com/rushteam/contentrec/pkg/utils"

// RecommendContext 承载消费者/场景信息，贯穿整个 Pipeline 透传。
// 消费者向量在入口处抽取一次，所有候选共享。
type RecommendContext struct {
	ConsumerID string

	// Profile 是只读的消费者画像；nil 代表匿名请求
	Profile *ConsumerProfile

	// ConsumerFeatures 是入口处抽取好的消费者向量
	ConsumerFeatures FeatureVector

	// Labels 是消费者级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数（min_count/max_count 等由编排层写入）
	Params map[string]any
}

// PutLabel 写入消费者级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取消费者级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
