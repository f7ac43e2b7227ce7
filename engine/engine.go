package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/contentrec/cache"
	"github.com/rushteam/contentrec/core"
	"github.com/rushteam/contentrec/feature"
	"github.com/rushteam/contentrec/feedback"
	"github.com/rushteam/contentrec/filter"
	"github.com/rushteam/contentrec/model"
	"github.com/rushteam/contentrec/pipeline"
	"github.com/rushteam/contentrec/rank"
	"github.com/rushteam/contentrec/rerank"
)

// Engine 是内容打分与选取引擎的编排器，对外只暴露两个操作：
//
//	GetRecommendations：候选池 + 消费者画像 -> 有序、带理由、多样性约束的推荐结果
//	SubmitFeedback：消费者对推荐的接受/拒绝，旁路进反馈日志
//
// 生命周期由宿主显式管理：New 构造（配置非法即失败），Shutdown 释放。
// 没有隐式全局单例；配置变更走显式 Reconfigure，不监听任何事件广播。
//
// 降级语义：模型加载失败不阻断启动，打分链路永久走启发式兜底，
// 直到 ReloadModel 成功为止。除构造期契约违规外，调用方总能拿到结果。
type Engine struct {
	mu sync.RWMutex

	cfg        *core.Config
	itemEx     *feature.ItemExtractor
	consumerEx *feature.ConsumerExtractor
	enricher   *feature.RemoteEnricher
	rankModel  model.RankModel // nil 表示主路径不可用
	fallback   *model.Heuristic
	rules      *rerank.RulesNode

	cache    *cache.Cache
	recorder feedback.Recorder

	featureService core.FeatureService
	exposedStore   core.KeyValueStore
	content        core.ContentProvider
	history        core.HistoryProvider
	logger         zerolog.Logger
}

// Option 引擎构造选项。
type Option func(*Engine)

// WithLogger 注入日志器（默认 Nop）。
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithRecorder 注入反馈记录器（默认内存实现，容量 Config.FeedbackCap）。
func WithRecorder(r feedback.Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithFeatureService 注入远程特征服务（如 feast.ServiceAdapter）。
func WithFeatureService(svc core.FeatureService) Option {
	return func(e *Engine) { e.featureService = svc }
}

// WithExposedStore 注入曝光历史存储，启用较长周期的已曝光过滤。
func WithExposedStore(kv core.KeyValueStore) Option {
	return func(e *Engine) { e.exposedStore = kv }
}

// WithContentProvider 注入候选池提供方，启用 Recommend 便捷入口。
func WithContentProvider(p core.ContentProvider) Option {
	return func(e *Engine) { e.content = p }
}

// WithHistoryProvider 注入交互历史提供方，启用 Recommend 便捷入口。
func WithHistoryProvider(p core.HistoryProvider) Option {
	return func(e *Engine) { e.history = p }
}

// New 构造引擎。配置非法返回 INVALID_CONFIG；模型加载失败只降级不报错。
func New(cfg *core.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cache:  cache.New(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.recorder == nil {
		e.recorder = feedback.NewMemoryRecorder(cfg.FeedbackCap)
	}

	if err := e.apply(cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// apply 按配置重建配置相关组件。规则表达式非法是构造期错误。
func (e *Engine) apply(cfg *core.Config) error {
	rules, err := rerank.NewRulesNode(cfg.Rules, rank.SortDeterministic, e.logger)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg = cfg
	e.itemEx = feature.NewItemExtractor(cfg)
	e.consumerEx = feature.NewConsumerExtractor(cfg)
	e.enricher = feature.NewRemoteEnricher(e.featureService, e.logger)
	e.fallback = model.NewHeuristic(cfg.Heuristic)
	e.rules = rules
	e.rankModel = e.loadModel(cfg)
	return nil
}

// loadModel 尝试加载主路径模型；失败记日志并返回 nil（启发式兜底生效）。
func (e *Engine) loadModel(cfg *core.Config) model.RankModel {
	if cfg.ModelPath == "" {
		return nil
	}
	m, err := model.LoadLRModel(cfg.ModelPath, 2*cfg.VectorLen)
	if err != nil {
		e.logger.Warn().Err(err).Str("path", cfg.ModelPath).
			Msg("rank model unavailable, heuristic fallback active")
		return nil
	}
	e.logger.Info().Str("model", m.Name()).Str("path", cfg.ModelPath).Msg("rank model loaded")
	return m
}

// GetRecommendations 对候选池打分并选取有界、多样性约束的子集。
//
// 契约：
//   - maxCount <= 0 或 minCount > maxCount 返回 INVALID_CONFIG
//   - 候选不足 minCount 返回全部可用候选；空候选返回空结果，都不是错误
//   - profile 为 nil 按匿名消费者处理
//   - 同 (消费者, 候选集指纹, 边界) 的查询按 Config.CacheTTL 缓存，
//     并发重复查询只计算一次
func (e *Engine) GetRecommendations(
	ctx context.Context,
	items []*core.ContentItem,
	profile *core.ConsumerProfile,
	minCount, maxCount int,
) (*core.Recommendation, error) {
	e.mu.RLock()
	cfg := e.cfg
	e.mu.RUnlock()

	// 契约校验在缓存之前：违规调用不应占用缓存计算
	selectNode, err := rerank.NewSelectNode(minCount, maxCount, cfg.Thresholds)
	if err != nil {
		return nil, err
	}

	consumerID := ""
	if profile != nil {
		consumerID = profile.ConsumerID
	}
	key := cache.NewKey(consumerID, items, minCount, maxCount)

	return e.cache.GetOrCompute(ctx, key, cfg.CacheTTL, func(cctx context.Context) (*core.Recommendation, error) {
		return e.compute(cctx, items, profile, selectNode)
	})
}

// compute 执行一次完整的打分链路：抽取 -> 过滤 -> 打分 -> 规则 -> 选取。
func (e *Engine) compute(
	ctx context.Context,
	items []*core.ContentItem,
	profile *core.ConsumerProfile,
	selectNode *rerank.SelectNode,
) (*core.Recommendation, error) {
	e.mu.RLock()
	cfg := e.cfg
	itemEx := e.itemEx
	consumerEx := e.consumerEx
	enricher := e.enricher
	rankModel := e.rankModel
	fallback := e.fallback
	rules := e.rules
	e.mu.RUnlock()

	consumerID := ""
	if profile != nil {
		consumerID = profile.ConsumerID
	}

	rctx := &core.RecommendContext{
		ConsumerID: consumerID,
		Profile:    profile,
	}
	rctx.ConsumerFeatures = enricher.Enrich(ctx, consumerID, consumerEx.Extract(profile))

	candidates := make([]*core.Candidate, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		cand := core.NewCandidate(it)
		cand.Features = itemEx.Extract(it)
		candidates = append(candidates, cand)
	}

	nodes := make([]pipeline.Node, 0, 4)
	if cfg.FilterSeen || e.exposedStore != nil {
		filters := make([]filter.Filter, 0, 2)
		if cfg.FilterSeen {
			filters = append(filters, &filter.SeenFilter{})
		}
		if e.exposedStore != nil {
			filters = append(filters, &filter.ExposedFilter{Store: e.exposedStore})
		}
		nodes = append(nodes, &filter.Node{Filters: filters, Logger: e.logger})
	}
	nodes = append(nodes, &rank.ScoreNode{
		Model:         rankModel,
		Fallback:      fallback,
		MaxConcurrent: cfg.Concurrency,
		Logger:        e.logger,
	})
	if !rules.Empty() {
		nodes = append(nodes, rules)
	}
	nodes = append(nodes, selectNode)

	p := &pipeline.Pipeline{Nodes: nodes}
	out, err := p.Run(ctx, rctx, candidates)
	if err != nil {
		return nil, err
	}
	return core.NewRecommendation(out), nil
}

// Recommend 是面向宿主的便捷入口：候选池与画像都从注入的提供方拉取。
// 需要 WithContentProvider；画像提供方缺失或查不到画像时按匿名处理。
func (e *Engine) Recommend(ctx context.Context, consumerID string, minCount, maxCount int) (*core.Recommendation, error) {
	if e.content == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidConfig,
			"recommend: no content provider configured")
	}
	items, err := e.content.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	var profile *core.ConsumerProfile
	if e.history != nil && consumerID != "" {
		profile, err = e.history.GetProfile(ctx, consumerID)
		if err != nil {
			// 画像是增强项：取不到按匿名继续，不让请求失败
			e.logger.Warn().Err(err).Str("consumer_id", consumerID).Msg("profile unavailable, serving anonymous")
			profile = nil
		}
	}
	if profile == nil {
		profile = &core.ConsumerProfile{ConsumerID: consumerID}
	}
	return e.GetRecommendations(ctx, items, profile, minCount, maxCount)
}

// SubmitFeedback 记录消费者对某条推荐的反馈。永不阻塞、永不失败。
func (e *Engine) SubmitFeedback(ctx context.Context, consumerID, itemID string, accepted bool) {
	e.recorder.Record(ctx, core.FeedbackEvent{
		ConsumerID: consumerID,
		ItemID:     itemID,
		Accepted:   accepted,
		Timestamp:  time.Now(),
	})
}

// DrainFeedback 取出最早的至多 limit 条反馈事件（供离线重训拉取）。
func (e *Engine) DrainFeedback(limit int) []core.FeedbackEvent {
	return e.recorder.Drain(limit)
}

// Reconfigure 显式替换配置并重建相关组件；缓存整体失效。
// 配置非法时保持原配置不变并返回错误。
func (e *Engine) Reconfigure(cfg *core.Config) error {
	if cfg == nil {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidConfig, "reconfigure: nil config")
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := e.apply(cfg); err != nil {
		return err
	}
	e.cache.Purge()
	e.logger.Info().Msg("engine reconfigured")
	return nil
}

// ReloadModel 重试加载主路径模型。成功后主路径恢复；失败保持兜底并返回 MODEL_UNAVAILABLE。
func (e *Engine) ReloadModel() error {
	e.mu.RLock()
	cfg := e.cfg
	e.mu.RUnlock()

	if cfg.ModelPath == "" {
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeModelUnavailable, "reload: no model path configured")
	}
	m, err := model.LoadLRModel(cfg.ModelPath, 2*cfg.VectorLen)
	if err != nil {
		return core.NewDomainError(core.ModuleModel, core.ErrorCodeModelUnavailable, "reload: "+err.Error())
	}

	e.mu.Lock()
	e.rankModel = m
	e.mu.Unlock()
	e.cache.Purge()
	e.logger.Info().Str("model", m.Name()).Msg("rank model reloaded")
	return nil
}

// ModelActive 返回主路径模型当前是否可用（用于观测/测试）。
func (e *Engine) ModelActive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rankModel != nil
}

// InvalidateConsumer 失效某消费者的全部缓存条目的代价较高，这里只提供按键失效；
// 全量失效请用 Reconfigure 或直接 Purge。
func (e *Engine) Invalidate(key cache.Key) {
	e.cache.Invalidate(key)
}

// Shutdown 释放引擎持有的资源：反馈落盘、远程特征连接、缓存。
func (e *Engine) Shutdown(ctx context.Context) error {
	var first error
	if err := e.recorder.Close(); err != nil {
		first = err
	}
	if e.featureService != nil {
		if err := e.featureService.Close(); err != nil && first == nil {
			first = err
		}
	}
	e.cache.Purge()
	e.logger.Info().Msg("engine shut down")
	return first
}
