package entity

// ViewErrorKind 视图错误类型
type ViewErrorKind string

const (
	ViewErrorTransport     ViewErrorKind = "transport"     // 后端不可达
	ViewErrorServer        ViewErrorKind = "server"        // 后端返回错误
	ViewErrorInconsistency ViewErrorKind = "inconsistency" // 数据不一致
	ViewErrorValidation    ViewErrorKind = "validation"    // 输入不合法，未发送请求
)

// ViewError 展示在页面内的错误，带手动重试入口
type ViewError struct {
	Kind       ViewErrorKind `json:"kind"`
	Message    string        `json:"message"`
	StatusCode int           `json:"status_code,omitempty"`
	Retryable  bool          `json:"retryable"`
	Retry      string        `json:"retry,omitempty"` // 重试时调用的接口，如 POST /api/v1/register/reload
}

func (e *ViewError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// PageInfo 分页状态；总数只来自后端
type PageInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalKnown bool `json:"total_known"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}
