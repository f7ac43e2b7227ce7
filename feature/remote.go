package feature

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/contentrec/core"
)

// 远程特征服务的槽位特征名。离线链路按这些名字物化到 Feature Store。
const (
	RemoteShareTop0     = "consumer:share_top0"
	RemoteShareTop1     = "consumer:share_top1"
	RemoteShareTop2     = "consumer:share_top2"
	RemoteShareTop3     = "consumer:share_top3"
	RemoteShareTop4     = "consumer:share_top4"
	RemoteEngagement    = "consumer:engagement"
	RemoteActivityRatio = "consumer:activity_7d"
)

// remoteSlotNames 按槽位顺序排列的远程特征名。
var remoteSlotNames = []string{
	RemoteShareTop0,
	RemoteShareTop1,
	RemoteShareTop2,
	RemoteShareTop3,
	RemoteShareTop4,
	RemoteEngagement,
	RemoteActivityRatio,
}

// RemoteEnricher 用远程特征服务（如 Feast）补充消费者向量。
// 远程值存在时覆盖本地抽取的对应槽位；服务不可用或缺特征时静默保留本地值。
// 失败永不向上传播：远程特征是增强项，不是依赖项。
type RemoteEnricher struct {
	service core.FeatureService
	logger  zerolog.Logger
}

// NewRemoteEnricher 创建远程特征补充器。service 为 nil 时 Enrich 直接透传。
func NewRemoteEnricher(service core.FeatureService, logger zerolog.Logger) *RemoteEnricher {
	return &RemoteEnricher{service: service, logger: logger}
}

// Enrich 合并远程特征到消费者向量，返回新向量（不修改入参）。
func (e *RemoteEnricher) Enrich(ctx context.Context, consumerID string, vec core.FeatureVector) core.FeatureVector {
	if e == nil || e.service == nil || consumerID == "" {
		return vec
	}

	remote, err := e.service.GetConsumerFeatures(ctx, consumerID)
	if err != nil || len(remote) == 0 {
		if err != nil {
			e.logger.Debug().Err(err).Str("consumer_id", consumerID).Msg("remote features unavailable, using local extraction")
		}
		return vec
	}

	out := vec.Clone()
	for slot, name := range remoteSlotNames {
		if v, ok := remote[name]; ok && slot < len(out) {
			out[slot] = clamp01(v)
		}
	}
	return out
}
