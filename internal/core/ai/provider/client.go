package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"smart-recipe-analyzer/internal/infrastructure/config"
	"smart-recipe-analyzer/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const baseURL = "https://openrouter.ai/api/v1"

// Client OpenRouter 文字生成客戶端
// 單次同步呼叫，不重試、不串流，逾時交由外層 context 控制
type Client struct {
	config *config.Config
	client *resty.Client
}

// NewClient 創建 OpenRouter 客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.OpenRouter.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("HTTP-Referer", "https://smart-recipe-analyzer.com").
		SetHeader("X-Title", "Smart Recipe Analyzer")

	return &Client{
		config: cfg,
		client: client,
	}
}

// Complete 送出 prompt 並返回模型的原始文字回應
// 回應內容不做任何修剪或格式化，交由上層解析器處理
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := map[string]interface{}{
		"model": c.config.OpenRouter.Model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"max_tokens": c.config.OpenRouter.MaxTokens,
	}

	common.LogDebug("Sending request to OpenRouter",
		zap.String("model", c.config.OpenRouter.Model),
		zap.Int("prompt_length", len(prompt)),
	)

	// 發送請求
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return "", common.NewProviderError("failed to send request to OpenRouter", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", common.NewProviderError(
			fmt.Sprintf("OpenRouter API returned error (status %d): %s", resp.StatusCode(), resp.String()),
			nil,
		)
	}

	// 解析回應
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", common.NewProviderError("failed to parse OpenRouter response", err)
	}

	if len(result.Choices) == 0 {
		return "", common.NewProviderError("no choices in OpenRouter response", nil)
	}

	content := result.Choices[0].Message.Content
	if content == "" {
		return "", common.NewProviderError("empty content in OpenRouter response", nil)
	}

	common.LogInfo("Successfully generated response from AI service",
		zap.String("model", c.config.OpenRouter.Model),
		zap.Int("content_length", len(content)),
	)

	return content, nil
}

// TestConnection 測試供應商是否可用（用於詳細健康檢查）
func (c *Client) TestConnection(ctx context.Context) bool {
	resp, err := c.Complete(ctx, "Say 'Hello' in one word.")
	if err != nil {
		return false
	}
	return strings.Contains(resp, "Hello")
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
