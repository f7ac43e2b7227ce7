package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 配置错误：INVALID_CONFIG（构造期致命）
//   - 模型错误：MODEL_UNAVAILABLE（非致命，触发启发式兜底）
//   - 特征错误：FEATURE_EXTRACTION（单条候选级，永不向上传播）
//   - 缓存错误：CACHE_COMPUTE（传播给同 key 所有等待者，不缓存）
type DomainError struct {
	Code    string // 错误代码（如 "INVALID_CONFIG", "MODEL_UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "engine", "model", "cache"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*DomainError)
	return ok
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeInvalidConfig     = "INVALID_CONFIG"     // 配置非法（构造期致命）
	ErrorCodeModelUnavailable  = "MODEL_UNAVAILABLE"  // 模型不可用（非致命，走兜底）
	ErrorCodeFeatureExtraction = "FEATURE_EXTRACTION" // 特征抽取失败（单条候选级）
	ErrorCodeCacheCompute      = "CACHE_COMPUTE"      // 缓存计算失败（同 key 可重试）
	ErrorCodeNotFound          = "NOT_FOUND"          // 资源不存在
	ErrorCodeNotSupported      = "NOT_SUPPORTED"      // 操作不支持
)

// 模块名称常量
const (
	ModuleEngine   = "engine"   // 编排模块
	ModuleFeature  = "feature"  // 特征模块
	ModuleModel    = "model"    // 模型模块
	ModuleSelect   = "select"   // 选取模块
	ModuleCache    = "cache"    // 缓存模块
	ModuleFeedback = "feedback" // 反馈模块
	ModuleStore    = "store"    // 存储模块
)

// 通用错误检查函数

// IsInvalidConfig 检查错误是否为 INVALID_CONFIG
func IsInvalidConfig(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidConfig
	}
	return false
}

// IsModelUnavailable 检查错误是否为 MODEL_UNAVAILABLE
func IsModelUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeModelUnavailable
	}
	return false
}

// IsCacheCompute 检查错误是否为 CACHE_COMPUTE
func IsCacheCompute(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeCacheCompute
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
