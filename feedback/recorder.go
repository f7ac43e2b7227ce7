package feedback

import (
	"context"
	"sync"

	"github.com/rushteam/contentrec/core"
)

// Recorder 反馈记录器接口（异步非阻塞语义）。
//
// 契约：
//   - Record 永不阻塞、永不失败调用方：记录失败内部记日志后吞掉
//   - 保留有界：超出容量后 FIFO 淘汰最旧事件
//   - Drain 返回最早的至多 limit 条事件（供离线重训拉取）；
//     读取后是否保留由实现决定：内存实现取出即删，存储实现保留原数据
type Recorder interface {
	// Record 追加一条反馈事件
	Record(ctx context.Context, event core.FeedbackEvent)

	// Drain 返回最早的至多 limit 条事件；limit <= 0 表示全部返回。
	// 读取后是否从底层删除由实现决定。
	Drain(limit int) []core.FeedbackEvent

	// Close 优雅关闭（等待缓冲数据落盘）
	Close() error
}

// MemoryRecorder 是内存实现的有界追加日志，用于单进程部署与测试。
type MemoryRecorder struct {
	mu     sync.Mutex
	events []core.FeedbackEvent
	cap    int
}

// NewMemoryRecorder 创建内存记录器。cap <= 0 时取默认 1000。
func NewMemoryRecorder(capacity int) *MemoryRecorder {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryRecorder{
		events: make([]core.FeedbackEvent, 0, capacity),
		cap:    capacity,
	}
}

func (r *MemoryRecorder) Record(_ context.Context, event core.FeedbackEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	if len(r.events) > r.cap {
		// FIFO 淘汰最旧事件
		copy(r.events, r.events[len(r.events)-r.cap:])
		r.events = r.events[:r.cap]
	}
}

func (r *MemoryRecorder) Drain(limit int) []core.FeedbackEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.events)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]core.FeedbackEvent, n)
	copy(out, r.events[:n])
	r.events = append(r.events[:0], r.events[n:]...)
	return out
}

// Len 返回当前保留的事件数。
func (r *MemoryRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *MemoryRecorder) Close() error { return nil }

var _ Recorder = (*MemoryRecorder)(nil)
