package textileapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TransportError 请求未到达后端或未收到响应（网络、超时、取消）
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("textile api %s %s: transport failure: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError 后端返回非2xx
type ServerError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string // 后端 {"detail": "..."} 中的消息
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("textile api %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
}

// ErrInvalidRequest 请求参数未通过客户端校验
var ErrInvalidRequest = errors.New("invalid request")

// IsTransport 是否为传输层错误
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsServer 是否为后端返回的错误
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// StatusCode 返回后端错误的HTTP状态码，非后端错误返回0
func StatusCode(err error) int {
	var se *ServerError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Detail 返回适合展示给用户的错误信息
func Detail(err error) string {
	var se *ServerError
	if errors.As(err, &se) && se.Detail != "" {
		return se.Detail
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "backend unreachable"
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// newServerError 解析FastAPI风格错误体：detail可能是字符串或校验错误数组
func newServerError(method, path string, status int, body []byte) *ServerError {
	se := &ServerError{Method: method, Path: path, StatusCode: status}

	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if len(envelope.Detail) > 0 {
			var s string
			if json.Unmarshal(envelope.Detail, &s) == nil {
				se.Detail = s
			} else {
				var items []struct {
					Loc []interface{} `json:"loc"`
					Msg string        `json:"msg"`
				}
				if json.Unmarshal(envelope.Detail, &items) == nil && len(items) > 0 {
					msgs := make([]string, 0, len(items))
					for _, it := range items {
						msgs = append(msgs, it.Msg)
					}
					se.Detail = strings.Join(msgs, "; ")
				}
			}
		}
		if se.Detail == "" {
			se.Detail = envelope.Message
		}
	}
	if se.Detail == "" {
		se.Detail = http.StatusText(status)
	}
	return se
}
