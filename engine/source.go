package engine

import (
	"context"
	"encoding/json"

	"github.com/rushteam/contentrec/core"
)

// StoreSource 是从 Store 读取候选池的 ContentProvider。
// - 如果 Store 实现了 KeyValueStore，优先使用 ZRange（有序集合，按热度排序）
//   取出 item id，再从 {Key}:meta 哈希里读取元数据 JSON
// - 否则从普通 key 读取 JSON 数组（[]ContentItem）
// - 如果 Store 为空，使用内存中的 Items 作为 fallback
type StoreSource struct {
	Store core.Store
	Key   string // 存储 key，例如 "pool:articles" 或 "pool:frontpage"
	Limit int    // ZRange 取数上限，<=0 默认 200

	Items []*core.ContentItem // fallback 内存候选池
}

// ListItems 实现 core.ContentProvider。
func (s *StoreSource) ListItems(ctx context.Context) ([]*core.ContentItem, error) {
	if s.Store != nil && s.Key != "" {
		if kv, ok := s.Store.(core.KeyValueStore); ok {
			if items := s.listFromSortedSet(ctx, kv); len(items) > 0 {
				return items, nil
			}
		} else {
			// 普通 key：整个候选池是一个 JSON 数组
			data, err := s.Store.Get(ctx, s.Key)
			if err == nil {
				var parsed []*core.ContentItem
				if json.Unmarshal(data, &parsed) == nil && len(parsed) > 0 {
					return parsed, nil
				}
			}
		}
	}
	return s.Items, nil
}

func (s *StoreSource) listFromSortedSet(ctx context.Context, kv core.KeyValueStore) []*core.ContentItem {
	limit := s.Limit
	if limit <= 0 {
		limit = 200
	}
	ids, err := kv.ZRange(ctx, s.Key, 0, int64(limit-1))
	if err != nil || len(ids) == 0 {
		return nil
	}
	metaKey := s.Key + ":meta"
	out := make([]*core.ContentItem, 0, len(ids))
	for _, id := range ids {
		raw, err := kv.HGet(ctx, metaKey, id)
		if err != nil {
			continue // 元数据缺失的 id 直接跳过
		}
		var item core.ContentItem
		if json.Unmarshal(raw, &item) != nil {
			continue
		}
		if item.ID == "" {
			item.ID = id
		}
		out = append(out, &item)
	}
	return out
}
