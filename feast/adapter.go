package feast

import (
	"context"
	"fmt"

	"github.com/rushteam/contentrec/core"
)

// ServiceAdapter 把 Feast Client 适配为 core.FeatureService，
// 供特征补充器（feature.RemoteEnricher）消费。
type ServiceAdapter struct {
	client Client

	// EntityKey 实体主键名，默认 "consumer_id"
	EntityKey string

	// Features 要拉取的特征名列表
	Features []string
}

// NewServiceAdapter 创建适配器。
func NewServiceAdapter(client Client, features []string) *ServiceAdapter {
	return &ServiceAdapter{
		client:    client,
		EntityKey: "consumer_id",
		Features:  features,
	}
}

// GetConsumerFeatures 实现 core.FeatureService。
func (a *ServiceAdapter) GetConsumerFeatures(ctx context.Context, consumerID string) (map[string]float64, error) {
	if a.client == nil {
		return nil, fmt.Errorf("feast adapter: client not configured")
	}
	resp, err := a.client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   a.Features,
		EntityRows: []map[string]any{{a.EntityKey: consumerID}},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Rows) == 0 {
		return nil, nil
	}
	return resp.Rows[0], nil
}

// Close 实现 core.FeatureService。
func (a *ServiceAdapter) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}

var _ core.FeatureService = (*ServiceAdapter)(nil)
