package textileapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// =============================================================================
// Client — 纺织后端REST客户端
// 所有页面/报表共用同一个实例，在main中创建后显式注入，不使用全局单例
// =============================================================================

// Client 后端客户端
type Client struct {
	baseURL    string       // 形如 http://localhost:8000/api/v1
	httpClient *http.Client // HTTP客户端
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层HTTP客户端（测试或自定义Transport）
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout 设置请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient 创建后端客户端实例
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL 返回后端基础地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest 执行后端API请求
// method: HTTP方法（GET/POST/PATCH/PUT/DELETE）
// path: API路径（如 /lots/reports/lot-register），拼接在baseURL之后
// query: 查询参数，可为nil
// body: 请求体（会被JSON序列化，nil则不发送body）
// result: 响应结构体指针（会被JSON反序列化，nil则丢弃响应体）
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newServerError(method, path, resp.StatusCode, respBody)
	}

	if result == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return &ServerError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     "malformed response body: " + err.Error(),
		}
	}
	return nil
}

// pageQuery 分页查询参数
func pageQuery(page, pageSize int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	if pageSize > 0 {
		q.Set("page_size", fmt.Sprint(pageSize))
	}
	return q
}
