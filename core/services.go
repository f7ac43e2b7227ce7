package core

import "context"

// ContentProvider 是内容列表提供方的领域接口，由外部内容存储实现。
// 引擎对返回的 ContentItem 只读。
type ContentProvider interface {
	// ListItems 返回候选内容池
	ListItems(ctx context.Context) ([]*ContentItem, error)
}

// HistoryProvider 是交互历史提供方的领域接口。
// 找不到画像时应返回 (nil, nil)，匿名消费者不是错误。
type HistoryProvider interface {
	// GetProfile 返回消费者画像；nil 代表匿名/无历史
	GetProfile(ctx context.Context, consumerID string) (*ConsumerProfile, error)
}

// FeatureService 是远程特征服务的领域接口（可选协作方）。
//
// 使用场景：
//   - 消费者兴趣特征由离线链路物化到 Feature Store，在线合并进本地抽取结果
//   - 服务不可用时调用方应静默回退到本地抽取，不得失败
//
// 实现：
//   - feast.ServiceAdapter（基于官方 Feast SDK）实现此接口
type FeatureService interface {
	// GetConsumerFeatures 获取消费者特征，key 为特征名
	GetConsumerFeatures(ctx context.Context, consumerID string) (map[string]float64, error)

	// Close 关闭连接
	Close() error
}
