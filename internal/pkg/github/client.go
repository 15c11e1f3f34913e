package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/qs3c/repoeval_go_server/config"
)

const (
	rateLimitWarningThreshold  = 100
	rateLimitCriticalThreshold = 10

	maxAttempts   = 2
	retryInterval = time.Second
)

// Client GitHub REST API 客户端
// 负责错误分类、限流头检查和有限重试，上层 Fetcher 只处理业务语义
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg *config.GitHubConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	var httpClient *http.Client
	if cfg.Token != "" {
		// 带 Token 的请求限额 5000/h，匿名只有 60/h
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(context.Background(), src)
		httpClient.Timeout = timeout
	} else {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
	}
}

// Get 请求并解析 JSON 响应到 v
func (c *Client) Get(ctx context.Context, path string, v interface{}) error {
	body, err := c.execute(ctx, path, "application/vnd.github+json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode github response: %w", err)
	}
	return nil
}

// GetList 请求列表接口，v 必须是指向切片的指针
func (c *Client) GetList(ctx context.Context, path string, v interface{}) error {
	return c.Get(ctx, path, v)
}

// GetRaw 请求原始内容（README 等），响应体为空时返回空字符串而非报错
func (c *Client) GetRaw(ctx context.Context, path string) (string, error) {
	body, err := c.execute(ctx, path, "application/vnd.github.raw")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// execute 统一执行：重试 + 错误分类 + 限流头检查
func (c *Client) execute(ctx context.Context, path, accept string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, err := c.doOnce(ctx, path, accept)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == maxAttempts {
			return nil, err
		}

		log.Printf("GitHub API 调用失败，准备重试 (%d/%d): path=%s, err=%v", attempt, maxAttempts, path, err)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrTransport, ctx.Err())
		case <-time.After(retryInterval):
		}
	}

	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, path, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// 超时、连接失败等传输层错误，可重试
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, statusError(resp.StatusCode, path)
	}

	c.checkRateLimit(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return body, nil
}

// statusError HTTP 状态码 → 错误分类
func statusError(status int, path string) error {
	switch {
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: status=%d path=%s", ErrInvalidToken, status, path)
	case status == http.StatusForbidden:
		return fmt.Errorf("%w: status=%d path=%s", ErrForbidden, status, path)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: status=%d path=%s", ErrNotFound, status, path)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status=%d path=%s", ErrRateLimited, status, path)
	case status == http.StatusBadRequest,
		status == http.StatusGone,
		status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: status=%d path=%s", ErrBadRequest, status, path)
	case status >= 500:
		return fmt.Errorf("%w: status=%d path=%s", ErrServerError, status, path)
	default:
		return fmt.Errorf("%w: status=%d path=%s", ErrBadRequest, status, path)
	}
}

// checkRateLimit 检查剩余限额，接近耗尽时提升日志级别；头缺失不算错误
func (c *Client) checkRateLimit(header http.Header) {
	remainingStr := header.Get("X-RateLimit-Remaining")
	resetStr := header.Get("X-RateLimit-Reset")
	if remainingStr == "" || resetStr == "" {
		return
	}

	remaining, err := strconv.Atoi(remainingStr)
	if err != nil {
		return
	}
	resetAt, err := strconv.ParseInt(resetStr, 10, 64)
	if err != nil {
		return
	}
	minutes := (resetAt - time.Now().Unix()) / 60

	switch {
	case remaining <= rateLimitCriticalThreshold:
		log.Printf("🚨 GitHub API Rate Limit 告急: 剩余 %d, %d 分钟后重置", remaining, minutes)
	case remaining <= rateLimitWarningThreshold:
		log.Printf("⚠️ GitHub API Rate Limit 偏低: 剩余 %d, %d 分钟后重置", remaining, minutes)
	}
}
