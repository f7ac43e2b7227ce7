package feedback

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rushteam/contentrec/core"
)

// StoreRecorder 把反馈事件异步落到 KeyValueStore（如 Redis），供离线重训消费。
//
// 存储布局：有序集合，key 为 {KeyPrefix}，score 为事件时间戳（秒），
// member 为事件 JSON。时间戳做 score 便于按时间窗口拉取。
//
// 非阻塞语义：事件先进有界 channel，后台 worker 逐条落盘；
// channel 满时丢弃并记日志——反馈是旁路信号，宁可丢不可阻塞打分链路。
type StoreRecorder struct {
	store  core.KeyValueStore
	prefix string
	logger zerolog.Logger

	ch chan core.FeedbackEvent
	wg sync.WaitGroup

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// NewStoreRecorder 创建存储落盘记录器并启动后台 worker。
// bufSize <= 0 时取默认 256。
func NewStoreRecorder(store core.KeyValueStore, keyPrefix string, bufSize int, logger zerolog.Logger) *StoreRecorder {
	if keyPrefix == "" {
		keyPrefix = "feedback:events"
	}
	if bufSize <= 0 {
		bufSize = 256
	}
	r := &StoreRecorder{
		store:  store,
		prefix: keyPrefix,
		logger: logger,
		ch:     make(chan core.FeedbackEvent, bufSize),
	}
	r.wg.Add(1)
	go r.worker()
	return r
}

// Record 入队一条事件。入队在锁内完成，保证不会写已关闭的 channel。
func (r *StoreRecorder) Record(_ context.Context, event core.FeedbackEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.logger.Warn().Msg("feedback recorder closed, event dropped")
		return
	}
	select {
	case r.ch <- event:
	default:
		r.logger.Warn().Str("item_id", event.ItemID).Msg("feedback buffer full, event dropped")
	}
}

// Drain 从存储读出至多 limit 条事件（不删除，由离线消费方自行截断时间窗口）。
// 存储不可用时返回空切片——Drain 也不向调用方抛错。
func (r *StoreRecorder) Drain(limit int) []core.FeedbackEvent {
	ctx := context.Background()
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	members, err := r.store.ZRange(ctx, r.prefix, 0, stop)
	if err != nil {
		r.logger.Warn().Err(err).Msg("feedback drain failed")
		return nil
	}

	out := make([]core.FeedbackEvent, 0, len(members))
	for _, m := range members {
		var ev core.FeedbackEvent
		if err := json.Unmarshal([]byte(m), &ev); err != nil {
			r.logger.Warn().Err(err).Msg("feedback event decode failed, skipped")
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Close 停止接收并等待缓冲事件落盘。幂等，重复调用直接返回。
func (r *StoreRecorder) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()

		close(r.ch)
		r.wg.Wait()
	})
	return nil
}

func (r *StoreRecorder) worker() {
	defer r.wg.Done()
	for ev := range r.ch {
		data, err := json.Marshal(ev)
		if err != nil {
			r.logger.Warn().Err(err).Msg("feedback event encode failed, dropped")
			continue
		}
		if err := r.store.ZAdd(context.Background(), r.prefix, float64(ev.Timestamp.Unix()), string(data)); err != nil {
			r.logger.Warn().Err(err).Str("item_id", ev.ItemID).Msg("feedback persist failed, dropped")
		}
	}
}

var _ Recorder = (*StoreRecorder)(nil)
