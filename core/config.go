package core

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是引擎的全量配置，由宿主显式注入（无隐式全局状态）。
// 所有字段支持 YAML/JSON 加载；零值字段在 Validate 前由 Normalize 补默认值。
type Config struct {
	// CategoryWeights 类目静态权重表，未知类目取 0.5 中性权重
	CategoryWeights map[string]float64 `yaml:"category_weights" json:"category_weights"`

	// VectorLen 特征向量长度，初始化时一次性确定
	VectorLen int `yaml:"vector_len" json:"vector_len"`

	// PopularityCeiling 热度归一化上限（热度比例按此截断）
	PopularityCeiling int64 `yaml:"popularity_ceiling" json:"popularity_ceiling"`

	// LengthCeiling 内容长度归一化上限
	LengthCeiling int `yaml:"length_ceiling" json:"length_ceiling"`

	// TagCeiling 标签数归一化上限
	TagCeiling int `yaml:"tag_ceiling" json:"tag_ceiling"`

	// EngagementCeiling 消费者交互量归一化上限
	EngagementCeiling int `yaml:"engagement_ceiling" json:"engagement_ceiling"`

	// ModelPath 排序模型文件路径；为空或加载失败则永久走启发式兜底
	ModelPath string `yaml:"model_path" json:"model_path"`

	// Thresholds 入选理由阈值
	Thresholds Thresholds `yaml:"thresholds" json:"thresholds"`

	// Heuristic 启发式兜底打分权重包络（可调配置，非固定契约）
	Heuristic HeuristicWeights `yaml:"heuristic" json:"heuristic"`

	// Rules 选取规则（CEL 表达式，作用于候选）
	Rules RulesConfig `yaml:"rules" json:"rules"`

	// CacheTTL 推荐结果缓存存活时长
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl"`

	// Concurrency 候选打分并发上限
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// FeedbackCap 反馈日志保留上限（FIFO 淘汰）
	FeedbackCap int `yaml:"feedback_cap" json:"feedback_cap"`

	// JitterSeed 抖动种子；固定种子保证跨运行确定性
	JitterSeed int64 `yaml:"jitter_seed" json:"jitter_seed"`

	// FilterSeen 是否过滤消费者已交互过的内容
	FilterSeen bool `yaml:"filter_seen" json:"filter_seen"`
}

// Thresholds 入选理由判定阈值。
type Thresholds struct {
	// HighRelevance 高相关判定分数线
	HighRelevance float64 `yaml:"high_relevance" json:"high_relevance"`

	// Popular 热门判定的原始热度线
	Popular int64 `yaml:"popular" json:"popular"`
}

// HeuristicWeights 启发式兜底各分量的贡献上限。
// 默认包络 0.3/0.3/0.2/0.2 来自线上经验值，未经 ground truth 校验，按可调配置对待。
type HeuristicWeights struct {
	Popularity float64 `yaml:"popularity" json:"popularity"` // 热度分量上限
	Recency    float64 `yaml:"recency" json:"recency"`       // 时新分量上限（30 天线性衰减）
	Featured   float64 `yaml:"featured" json:"featured"`     // 编辑精选固定加成
	Affinity   float64 `yaml:"affinity" json:"affinity"`     // 消费者类目偏好分量上限
}

// RulesConfig 选取规则配置。表达式语法见 pkg/dsl。
type RulesConfig struct {
	// Exclude 命中即剔除候选，例如 `item.category == "ads"`
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Boost 命中即加分（结果仍截断回 [0,1]）
	Boost []BoostRule `yaml:"boost" json:"boost"`
}

// BoostRule 单条加分规则。
type BoostRule struct {
	Expr   string  `yaml:"expr" json:"expr"`
	Amount float64 `yaml:"amount" json:"amount"`
}

// DefaultConfig 返回带默认值的配置。
func DefaultConfig() *Config {
	return &Config{
		CategoryWeights:   make(map[string]float64),
		VectorLen:         ItemVectorLen,
		PopularityCeiling: 1000,
		LengthCeiling:     5000,
		TagCeiling:        10,
		EngagementCeiling: 50,
		Thresholds: Thresholds{
			HighRelevance: 0.8,
			Popular:       500,
		},
		Heuristic: HeuristicWeights{
			Popularity: 0.3,
			Recency:    0.3,
			Featured:   0.2,
			Affinity:   0.2,
		},
		CacheTTL:    5 * time.Minute,
		Concurrency: 8,
		FeedbackCap: 1000,
		JitterSeed:  1,
		FilterSeen:  true,
	}
}

// Normalize 为零值字段补默认值（不覆盖显式配置）。
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.CategoryWeights == nil {
		c.CategoryWeights = def.CategoryWeights
	}
	if c.VectorLen == 0 {
		c.VectorLen = def.VectorLen
	}
	if c.PopularityCeiling == 0 {
		c.PopularityCeiling = def.PopularityCeiling
	}
	if c.LengthCeiling == 0 {
		c.LengthCeiling = def.LengthCeiling
	}
	if c.TagCeiling == 0 {
		c.TagCeiling = def.TagCeiling
	}
	if c.EngagementCeiling == 0 {
		c.EngagementCeiling = def.EngagementCeiling
	}
	if c.Thresholds.HighRelevance == 0 {
		c.Thresholds.HighRelevance = def.Thresholds.HighRelevance
	}
	if c.Thresholds.Popular == 0 {
		c.Thresholds.Popular = def.Thresholds.Popular
	}
	zero := HeuristicWeights{}
	if c.Heuristic == zero {
		c.Heuristic = def.Heuristic
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = def.CacheTTL
	}
	if c.Concurrency == 0 {
		c.Concurrency = def.Concurrency
	}
	if c.FeedbackCap == 0 {
		c.FeedbackCap = def.FeedbackCap
	}
	if c.JitterSeed == 0 {
		c.JitterSeed = def.JitterSeed
	}
}

// Validate 校验配置合法性；非法配置是构造期致命错误。
func (c *Config) Validate() error {
	if c.VectorLen <= 0 {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidConfig, "config: vector_len must be positive")
	}
	if c.VectorLen != ItemVectorLen {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidConfig,
			fmt.Sprintf("config: vector_len %d does not match slot layout %d", c.VectorLen, ItemVectorLen))
	}
	if c.PopularityCeiling <= 0 {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidConfig, "config: popularity_ceiling must be positive")
	}
	if c.LengthCeiling <= 0 {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidConfig, "config: length_ceiling must be positive")
	}
	if c.TagCeiling <= 0 {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidConfig, "config: tag_ceiling must be positive")
	}
	if c.EngagementCeiling <= 0 {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidConfig, "config: engagement_ceiling must be positive")
	}
	if c.Concurrency <= 0 {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidConfig, "config: concurrency must be positive")
	}
	if c.CacheTTL < 0 {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidConfig, "config: cache_ttl must not be negative")
	}
	if c.FeedbackCap <= 0 {
		return NewDomainError(ModuleEngine, ErrorCodeInvalidConfig, "config: feedback_cap must be positive")
	}
	for _, w := range []float64{c.Heuristic.Popularity, c.Heuristic.Recency, c.Heuristic.Featured, c.Heuristic.Affinity} {
		if w < 0 || w > 1 {
			return NewDomainError(ModuleEngine, ErrorCodeInvalidConfig, "config: heuristic weights must be in [0,1]")
		}
	}
	return nil
}

// LoadConfigFromYAML 从 YAML 文件加载配置。
func LoadConfigFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// LoadConfigFromJSON 从 JSON 文件加载配置。
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	cfg.Normalize()
	return &cfg, nil
}
