package types

// ErrorResponse 统一错误响应，detail 只在调试模式下返回.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}
