package model

// RankModel 是排序阶段的最小抽象：输入拼接特征向量（消费者在前、内容在后），
// 输出 [0,1] 的相关度分数。具体实现可以是本地模型（LR）或任意返回概率的回归/分类器。
type RankModel interface {
	Name() string
	Predict(features []float64) (float64, error)
}
