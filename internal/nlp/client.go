// Package nlp 提供外部 NLP 服务的访问边界
// 训练、解析与评估全部委托给外部服务，结果同步返回给调用方
package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client NLP 服务访问接口
type Client interface {
	// Train 请求训练当前版本
	Train(ctx context.Context, authorizationID string) (*Response, error)
	// Analyze 请求解析一段文本
	Analyze(ctx context.Context, authorizationID string, req *AnalyzeRequest) (*Response, error)
	// Evaluate 请求评估指定语言
	Evaluate(ctx context.Context, authorizationID string, req *EvaluateRequest) (*Response, error)
}

// AnalyzeRequest 文本解析请求
type AnalyzeRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"language" binding:"required"`
}

// EvaluateRequest 评估请求
type EvaluateRequest struct {
	Language string `json:"language" binding:"required"`
}

// Response NLP 服务响应，载荷原样透传
type Response struct {
	StatusCode int             `json:"status_code"`
	Payload    json.RawMessage `json:"payload"`
}

// UpstreamError 上游调用失败，携带上游状态码
type UpstreamError struct {
	StatusCode int
	Message    string
}

// Error 实现 error 接口
func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("nlp service returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("nlp service returned status %d", e.StatusCode)
}

// HTTPClient 基于 HTTP 的 NLP 服务客户端
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient 创建 NLP 服务客户端
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Train 请求训练当前版本
func (c *HTTPClient) Train(ctx context.Context, authorizationID string) (*Response, error) {
	return c.post(ctx, "/train/", authorizationID, nil)
}

// Analyze 请求解析一段文本
func (c *HTTPClient) Analyze(ctx context.Context, authorizationID string, req *AnalyzeRequest) (*Response, error) {
	return c.post(ctx, "/analyze/", authorizationID, req)
}

// Evaluate 请求评估指定语言
func (c *HTTPClient) Evaluate(ctx context.Context, authorizationID string, req *EvaluateRequest) (*Response, error) {
	return c.post(ctx, "/evaluate/", authorizationID, req)
}

// post 发送请求并透传响应
// 非 2xx 响应转换为 UpstreamError；响应体无法解析时退化为 unexpected failure
func (c *HTTPClient) post(ctx context.Context, path, authorizationID string, body interface{}) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode nlp request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build nlp request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+authorizationID)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call nlp service: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read nlp response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &UpstreamError{
			StatusCode: httpResp.StatusCode,
			Message:    extractErrorMessage(respBody),
		}
	}

	if !json.Valid(respBody) {
		return nil, &UpstreamError{
			StatusCode: httpResp.StatusCode,
			Message:    "something unexpected happened, response could not be parsed",
		}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Payload:    respBody,
	}, nil
}

// extractErrorMessage 尽力从上游错误响应中提取 message
func extractErrorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	return parsed.Error.Message
}
