package feature

import "hash/fnv"

// jitterScale 抖动项的最大幅度，只用于打破完全并列，不影响排序大局。
const jitterScale = 0.01

// Jitter 计算确定性抖动：同一 (seed, id) 跨运行、跨调用顺序恒定。
// 不使用顺序随机源，否则抖动会依赖候选遍历顺序，破坏确定性。
func Jitter(seed int64, id string) float64 {
	h := fnv.New64a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(seed >> (8 * i))
	}
	h.Write(buf[:])
	h.Write([]byte(id))
	// 取低 52 位映射到 [0,1) 再缩放
	v := h.Sum64() & ((1 << 52) - 1)
	return float64(v) / float64(uint64(1)<<52) * jitterScale
}
