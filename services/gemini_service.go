package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"milo_career/logger"
	"milo_career/models"
)

const (
	defaultGeminiModel     = "gemini-2.5-flash"
	defaultGeminiChatModel = "gemini-2.5-pro"
)

// GeminiClient 基于 Google GenAI SDK 的 TextGenerator
type GeminiClient struct {
	client    *genai.Client
	model     string
	chatModel string
	limiter   *rate.Limiter
}

// NewGeminiClient limiter 为 nil 时不限速
func NewGeminiClient(ctx context.Context, apiKey, model, chatModel string, limiter *rate.Limiter) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	g := &GeminiClient{
		client:    client,
		model:     models.FirstNonEmpty(strings.TrimSpace(model), defaultGeminiModel),
		chatModel: models.FirstNonEmpty(strings.TrimSpace(chatModel), defaultGeminiChatModel),
		limiter:   limiter,
	}
	if g.limiter == nil {
		g.limiter = rate.NewLimiter(rate.Inf, 1)
	}
	logger.Info("gemini client ready", "model", g.model, "chat_model", g.chatModel)
	return g, nil
}

func generationConfig(opts CompletionOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}
	return cfg
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}
	model := models.FirstNonEmpty(opts.Model, g.model)
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), generationConfig(opts))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output := strings.TrimSpace(responseText(resp))
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

func (g *GeminiClient) Stream(ctx context.Context, prompt string, opts CompletionOptions) (<-chan StreamToken, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("prompt must not be empty")
	}
	model := models.FirstNonEmpty(opts.Model, g.chatModel)
	cfg := generationConfig(opts)
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	out := make(chan StreamToken)
	go func() {
		defer close(out)
		for resp, err := range g.client.Models.GenerateContentStream(ctx, model, genai.Text(prompt), cfg) {
			tok := StreamToken{}
			if err != nil {
				tok.Err = fmt.Errorf("generate content stream: %w", err)
			} else if tok.Content = responseText(resp); tok.Content == "" {
				continue
			}

			select {
			case out <- tok:
			case <-ctx.Done():
				return
			}
			if tok.Err != nil {
				return
			}
		}
	}()
	return out, nil
}

// responseText 拼接所有候选的文本片段，保留原始空白以便流式拼接
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
