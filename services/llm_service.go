package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"milo_career/config"
	"milo_career/logger"
	"milo_career/models"
	"milo_career/utils"
)

// CompletionOptions 单次调用参数；Model 为空时使用客户端默认模型
type CompletionOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// StreamToken 流式输出的一个片段，Err 非空表示流异常结束
type StreamToken struct {
	Content string
	Err     error
}

// TextGenerator 外部文本生成服务
type TextGenerator interface {
	// Complete 单次调用，用于意图解析与计划生成
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
	// Stream 流式调用。返回的通道在结束时关闭，ctx 取消后停止读取上游。
	Stream(ctx context.Context, prompt string, opts CompletionOptions) (<-chan StreamToken, error)
}

// NewTextGenerator 按 llm.provider 创建客户端
func NewTextGenerator(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "gemini":
		return NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.ChatModel, newLimiter(cfg))
	case "openai", "":
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// newLimiter 出站请求限速，requests_per_sec 为 0 时不限
func newLimiter(cfg *config.Config) *rate.Limiter {
	limit := rate.Inf
	if cfg.LLM.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.LLM.RequestsPerSec)
	}
	return rate.NewLimiter(limit, max(cfg.LLM.Burst, 1))
}

// =====================
// OpenAI 兼容接口
// =====================

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type chatStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// apiError 非 200 响应
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("llm api error: %d - %s", e.Status, e.Body)
}

// retryConfig 指数退避
type retryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// OpenAIClient /v1/chat/completions 客户端
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	chatModel  string
	httpClient *http.Client
	// streamClient 不设整体超时，由 ctx 控制
	streamClient *http.Client
	limiter      *rate.Limiter
	retry        retryConfig
}

func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	apiKey := cfg.LLM.APIKey
	// 如果配置中的API Key是环境变量引用，则从环境变量中获取
	if strings.HasPrefix(apiKey, "${") && strings.HasSuffix(apiKey, "}") {
		envName := apiKey[2 : len(apiKey)-1]
		apiKey = os.Getenv(envName)
		logger.Info("从环境变量获取API Key", "env_var", envName)
	}
	if apiKey == "" {
		logger.Warn("LLM API Key 未配置，生成请求将失败")
	}

	return &OpenAIClient{
		baseURL:      strings.TrimRight(cfg.LLM.BaseURL, "/"),
		apiKey:       apiKey,
		model:        cfg.LLM.Model,
		chatModel:    cfg.LLM.ChatModel,
		httpClient:   &http.Client{Timeout: time.Duration(cfg.LLM.TimeoutSec) * time.Second},
		streamClient: &http.Client{},
		limiter:      newLimiter(cfg),
		retry: retryConfig{
			MaxRetries:  cfg.LLM.MaxRetries,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     8 * time.Second,
			Multiplier:  2,
		},
	}
}

func (c *OpenAIClient) endpoint() string {
	return c.baseURL + "/v1/chat/completions"
}

func (c *OpenAIClient) newRequest(ctx context.Context, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return req, nil
}

// Complete 调用失败时按配置重试（仅网络错误、429 与 5xx）
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	model := models.FirstNonEmpty(opts.Model, c.model)
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	logger.Info("LLM请求", "model", model, "request_size", len(body), "prompt_preview", utils.TruncateForLog(utils.CollapseWhitespace(prompt), 100))
	start := time.Now()

	content, err := retryDo(ctx, c.retry, func() (string, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
		req, err := c.newRequest(ctx, body)
		if err != nil {
			return "", err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return "", &apiError{Status: resp.StatusCode, Body: utils.TruncateForLog(string(data), 500)}
		}

		var parsed chatResponse
		if err := json.Unmarshal(data, &parsed); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return "", errors.New("llm api returned no choices")
		}
		logger.Info("成功获取LLM响应",
			"tokens_total", parsed.Usage.TotalTokens,
			"finish_reason", parsed.Choices[0].FinishReason)
		return parsed.Choices[0].Message.Content, nil
	})
	if err != nil {
		logger.Error("LLM请求失败", "model", model, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return "", err
	}
	logger.Info("LLM请求完成", "duration_ms", time.Since(start).Milliseconds(), "content_preview", utils.TruncateForLog(content, 200))
	return content, nil
}

// Stream 连接阶段可重试；一旦开始读取数据，错误通过通道返回
func (c *OpenAIClient) Stream(ctx context.Context, prompt string, opts CompletionOptions) (<-chan StreamToken, error) {
	model := models.FirstNonEmpty(opts.Model, c.chatModel)
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "system", Content: prompt}},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	resp, err := retryDo(ctx, c.retry, func() (*http.Response, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := c.newRequest(ctx, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/event-stream")
		resp, err := c.streamClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, &apiError{Status: resp.StatusCode, Body: utils.TruncateForLog(string(data), 500)}
		}
		return resp, nil
	})
	if err != nil {
		logger.Error("LLM流式请求失败", "model", model, "error", err)
		return nil, err
	}

	out := make(chan StreamToken)
	go func() {
		defer close(out)
		defer resp.Body.Close()
		readEventStream(ctx, resp.Body, out)
	}()
	return out, nil
}

// readEventStream 解析 "data:" 行直到 [DONE]
func readEventStream(ctx context.Context, r io.Reader, out chan<- StreamToken) {
	send := func(tok StreamToken) bool {
		select {
		case out <- tok:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return
		}

		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			send(StreamToken{Err: fmt.Errorf("decode stream chunk: %w", err)})
			return
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if !send(StreamToken{Content: chunk.Choices[0].Delta.Content}) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		send(StreamToken{Err: fmt.Errorf("read stream: %w", err)})
		return
	}
	// 上游未发送 [DONE] 即断开
	if ctx.Err() == nil {
		send(StreamToken{Err: io.ErrUnexpectedEOF})
	}
}

// retryDo 执行 fn，失败时按指数退避重试
func retryDo[T any](ctx context.Context, rc retryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= rc.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return zero, err
		}

		if attempt < rc.MaxRetries {
			wait := time.Duration(float64(rc.InitialWait) * math.Pow(rc.Multiplier, float64(attempt)))
			if wait > rc.MaxWait {
				wait = rc.MaxWait
			}
			logger.Warn("LLM请求重试", "attempt", attempt+1, "wait", wait, "error", err)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}
	return zero, lastErr
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// extractJSONFromText 从文本中提取JSON部分
func extractJSONFromText(text string) string {
	// 优先查找```json和```之间的内容
	startMarker := "```json"
	endMarker := "```"
	if startIdx := strings.Index(text, startMarker); startIdx >= 0 {
		startIdx += len(startMarker)
		if endIdx := strings.Index(text[startIdx:], endMarker); endIdx > 0 {
			return strings.TrimSpace(text[startIdx : startIdx+endIdx])
		}
	}

	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")
	if startIdx >= 0 && endIdx > startIdx {
		return text[startIdx : endIdx+1]
	}

	logger.Warn("无法从文本中提取JSON部分，返回原始文本")
	return text
}
