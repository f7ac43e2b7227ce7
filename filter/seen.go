package filter

import (
	"context"

	"github.com/rushteam/contentrec/core"
)

// SeenFilter 过滤消费者已交互过的内容（画像内存判断，近期数据）。
// 匿名消费者不过滤。
type SeenFilter struct{}

func (f *SeenFilter) Name() string { return "filter.seen" }

func (f *SeenFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	cand *core.Candidate,
) (bool, error) {
	if rctx == nil || rctx.Profile == nil || cand == nil || cand.Item == nil {
		return false, nil
	}
	return rctx.Profile.HasSeen(cand.Item.ID), nil
}

// ExposedFilter 过滤存储中记录的已曝光内容（较长周期数据）。
// 以有序集合保存曝光历史：key 为 {KeyPrefix}:{ConsumerID}，member 为 item id。
// 存储查不到（NOT_FOUND）表示未曝光；其他存储错误保守放行。
type ExposedFilter struct {
	Store core.KeyValueStore

	// KeyPrefix 默认 "consumer:exposed"
	KeyPrefix string
}

func (f *ExposedFilter) Name() string { return "filter.exposed" }

func (f *ExposedFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	cand *core.Candidate,
) (bool, error) {
	if f.Store == nil || rctx == nil || rctx.ConsumerID == "" || cand == nil || cand.Item == nil {
		return false, nil
	}

	prefix := f.KeyPrefix
	if prefix == "" {
		prefix = "consumer:exposed"
	}

	_, err := f.Store.ZScore(ctx, prefix+":"+rctx.ConsumerID, cand.Item.ID)
	if err != nil {
		if core.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
