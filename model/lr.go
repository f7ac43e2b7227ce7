package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/rushteam/contentrec/core"
)

// LRModel 实现了逻辑回归 (Logistic Regression) 模型。
// 它是相关度预估最基础也最经典的算法，作为可训练主路径的默认实现。
//
// 预测原理：
// 1. 线性加权求和: z = Bias + sum(Weight_i * Feature_i)
// 2. Sigmoid 变换: P = 1 / (1 + exp(-z))
//
// 最终输出值 P 代表相关概率，范围在 (0, 1) 之间。
// 权重为定长向量，与拼接后的特征向量一一对应（消费者向量 + 内容向量）。
type LRModel struct {
	Bias    float64   // 偏置项 (Bias / Intercept)
	Weights []float64 // 特征权重，长度 = 2 * VectorLen
}

// LoadLRModel 从 JSON 文件加载模型并校验维度。
// 维度不匹配是 INVALID_CONFIG：宁可在构造期失败，也不要在线上打出错误分。
func LoadLRModel(path string, wantDim int) (*LRModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw struct {
		Bias    float64   `json:"bias"`
		Weights []float64 `json:"weights"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if wantDim > 0 && len(raw.Weights) != wantDim {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("lr model: weight dim %d does not match feature dim %d", len(raw.Weights), wantDim))
	}
	return &LRModel{Bias: raw.Bias, Weights: raw.Weights}, nil
}

func (m *LRModel) Name() string { return "lr" }

func (m *LRModel) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Weights) {
		return 0, core.NewDomainError(core.ModuleModel, core.ErrorCodeFeatureExtraction,
			fmt.Sprintf("lr model: feature dim %d does not match weight dim %d", len(features), len(m.Weights)))
	}
	score := m.Bias
	for i, v := range features {
		score += m.Weights[i] * v
	}
	return 1 / (1 + math.Exp(-score)), nil
}
