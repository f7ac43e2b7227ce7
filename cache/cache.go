package cache

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rushteam/contentrec/core"
)

// Key 是推荐结果的缓存键：消费者 + 候选集指纹。
// 显式结构体，不用字符串拼接，避免分隔符歧义。
type Key struct {
	ConsumerID  string
	Fingerprint uint64
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%016x", k.ConsumerID, k.Fingerprint)
}

// NewKey 计算查询键：指纹对候选 ID 排序后哈希，附带数量边界。
// 同一候选集不同顺序得到相同指纹；边界不同视为不同查询。
func NewKey(consumerID string, items []*core.ContentItem, minCount, maxCount int) Key {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it != nil {
			ids = append(ids, it.ID)
		}
	}
	sort.Strings(ids)

	h := fnv.New64a()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	fmt.Fprintf(h, "%d:%d", minCount, maxCount)

	return Key{ConsumerID: consumerID, Fingerprint: h.Sum64()}
}

// ComputeFunc 计算一次推荐结果。
type ComputeFunc func(ctx context.Context) (*core.Recommendation, error)

// Cache 按查询键缓存推荐结果。
//
// 并发语义：
//   - 同 key 至多一个在途计算（singleflight），并发调用方共享同一结果
//   - 已发布条目的读取不受写入阻塞（读写锁）
//   - 过期是绝对的：过期后读取视为 miss，触发重算并惰性清除
//   - 计算错误传播给同 key 所有等待者，且不缓存，可立即重试
//   - 调用方取消不影响在途计算：计算脱离调用方 context 执行，
//     完成后照常发布，供其他等待者使用
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*entry
	group   singleflight.Group
}

type entry struct {
	rec       *core.Recommendation
	expiresAt time.Time
}

// New 创建空缓存。
func New() *Cache {
	return &Cache{
		entries: make(map[Key]*entry),
	}
}

// GetOrCompute 读取或计算一次推荐结果。ttl <= 0 表示结果不缓存（仍然合并在途计算）。
func (c *Cache) GetOrCompute(ctx context.Context, key Key, ttl time.Duration, compute ComputeFunc) (*core.Recommendation, error) {
	if rec, ok := c.get(key); ok {
		return rec, nil
	}

	ch := c.group.DoChan(key.String(), func() (any, error) {
		// 在途期间可能已有其他 flight 发布了结果
		if rec, ok := c.get(key); ok {
			return rec, nil
		}

		// 计算脱离调用方 context：一旦开始就做完并发布
		rec, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return nil, core.NewDomainError(core.ModuleCache, core.ErrorCodeCacheCompute,
				fmt.Sprintf("cache: compute failed for %s: %v", key, err))
		}
		if ttl > 0 {
			c.put(key, rec, ttl)
		}
		return rec, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*core.Recommendation), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get 只读访问：命中且未过期才返回。过期条目惰性清除。
func (c *Cache) Get(key Key) (*core.Recommendation, bool) {
	return c.get(key)
}

// Invalidate 显式失效单个 key。
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Purge 清空全部条目。
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*entry)
}

// Len 返回当前条目数（含未清除的过期条目），用于观测。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) get(key Key) (*core.Recommendation, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		// 双检：清除时条目可能已被替换
		if cur, ok := c.entries[key]; ok && cur == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.rec, true
}

func (c *Cache) put(key Key, rec *core.Recommendation, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{
		rec:       rec,
		expiresAt: time.Now().Add(ttl),
	}
}
