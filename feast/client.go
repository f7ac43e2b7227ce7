package feast

import (
	"context"
	"time"
)

// Client 是 Feast Feature Store 的客户端接口（领域层抽象）。
//
// Feast 是一个开源的 Feature Store，本引擎只消费其在线特征读取能力：
// 消费者兴趣特征由离线链路物化到在线存储，这里按需拉取。
//
// 参考：https://github.com/feast-dev/feast
type Client interface {
	// GetOnlineFeatures 获取在线特征（用于实时打分）
	//
	// 参数：
	//   - Features: 特征名称列表，例如 ["consumer:share_top0", "consumer:engagement"]
	//   - EntityRows: 实体行，例如 [{"consumer_id": "u42"}]
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表
	Features []string

	// EntityRows 实体行，例如 [{"consumer_id": "u42"}]
	EntityRows []map[string]any

	// Project 项目名称（可选，覆盖客户端默认值）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	// Rows 特征行，与请求实体行一一对应；key 为特征名
	Rows []map[string]float64
}

// ClientOption Feast 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig Feast 客户端配置
type ClientConfig struct {
	// Timeout 单次请求超时
	Timeout time.Duration

	// StaticToken 静态 Token 认证；为空时使用非加密连接
	StaticToken string
}

// WithTimeout 配置选项：设置超时时间
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithStaticToken 配置选项：设置静态 Token 认证
func WithStaticToken(token string) ClientOption {
	return func(c *ClientConfig) {
		c.StaticToken = token
	}
}
