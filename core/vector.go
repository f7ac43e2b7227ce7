package core

// FeatureVector 是定长的归一化特征向量，取值大致落在 [0,1]。
// 长度在引擎初始化时一次性确定（Config.VectorLen），之后不变。
// 内容向量与消费者向量各占一种槽位布局，拼接后作为模型输入。
type FeatureVector []float64

// Concat 拼接两个向量（消费者在前、内容在后），返回新切片。
func (v FeatureVector) Concat(other FeatureVector) FeatureVector {
	out := make(FeatureVector, 0, len(v)+len(other))
	out = append(out, v...)
	out = append(out, other...)
	return out
}

// Clone 返回向量的拷贝。
func (v FeatureVector) Clone() FeatureVector {
	if v == nil {
		return nil
	}
	out := make(FeatureVector, len(v))
	copy(out, v)
	return out
}

// 内容向量槽位布局。
const (
	SlotItemPopularity = iota // 热度比例（按 ceiling 截断）
	SlotItemFeatured          // 编辑精选标记 0/1
	SlotItemCategory          // 归一化类目序号
	SlotItemLength            // 内容长度代理
	SlotItemRecency           // 指数时间衰减 exp(-days/7)
	SlotItemCateWeight        // 类目静态权重（未知类目取 0.5）
	SlotItemHasExcerpt        // 摘要存在标记 0/1
	SlotItemHasImage          // 配图存在标记 0/1
	SlotItemTagCount          // 归一化标签数
	SlotItemJitter            // 确定性抖动（打破并列）

	ItemVectorLen = 10
)

// 消费者向量槽位布局。前 TopCategoryShares 个槽位是类目交互占比（按交互量降序）。
const (
	SlotConsumerShare0 = iota
	SlotConsumerShare1
	SlotConsumerShare2
	SlotConsumerShare3
	SlotConsumerShare4
	SlotConsumerEngagement // 交互量（按 ceiling 截断归一化）
	SlotConsumerRecency    // 近 7 天交互占比
	SlotConsumerReserved0  // 预留
	SlotConsumerReserved1  // 预留
	SlotConsumerJitter     // 确定性抖动

	ConsumerVectorLen = 10
	TopCategoryShares = 5
)
