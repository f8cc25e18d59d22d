package service

import (
	"context"
	"strings"
	"time"

	"smart-recipe-analyzer/internal/core/ai/cache"
	"smart-recipe-analyzer/internal/core/ai/provider"
	"smart-recipe-analyzer/internal/core/ai/queue"
	"smart-recipe-analyzer/internal/infrastructure/config"
	"smart-recipe-analyzer/internal/pkg/common"

	"go.uber.org/zap"
)

// responseCache 回應快取的最小介面
type responseCache interface {
	Get(ctx context.Context, prompt string) (string, error)
	Set(ctx context.Context, prompt, value string) error
}

// Response AI 回應結構
// 內容即模型的原始文字輸出
type Response struct {
	Content string
}

// Service AI 服務
// 統一入口：快取 → 隊列 → 供應商
type Service struct {
	config       *config.Config
	client       *provider.Client
	queueManager *queue.Manager
	cacheManager responseCache
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config, cacheManager *cache.CacheManager) *Service {
	client := provider.NewClient(cfg)

	s := &Service{
		config:       cfg,
		client:       client,
		queueManager: queue.NewManager(cfg, client),
	}
	// 避免把有型別的 nil 指標放進介面欄位
	if cacheManager != nil {
		s.cacheManager = cacheManager
	}
	return s
}

// cacheKey 統一 prompt 格式，去除多餘空白、tab、換行，確保快取 key 一致
func cacheKey(prompt string) string {
	key := strings.TrimSpace(prompt)
	key = strings.ReplaceAll(key, "\t", "")
	key = strings.ReplaceAll(key, "\n", "")
	return strings.Join(strings.Fields(key), "")
}

// ProcessRequest 統一對外方法
func (s *Service) ProcessRequest(ctx context.Context, prompt string) (*Response, error) {
	key := cacheKey(prompt)

	// 檢查緩存
	if s.config.Cache.Enabled && s.cacheManager != nil {
		if val, err := s.cacheManager.Get(ctx, key); err == nil && val != "" {
			return &Response{Content: val}, nil
		}
	}

	// 進入隊列等待 worker 處理
	start := time.Now()
	resultCh, err := s.queueManager.Enqueue(ctx, prompt)
	if err != nil {
		return nil, common.NewProviderError("failed to enqueue AI request", err)
	}

	var result queue.Result
	select {
	case result = <-resultCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	common.LogAICall(prompt, time.Since(start), result.Error, "")
	if result.Error != nil {
		return nil, result.Error
	}

	response := &Response{Content: result.Content}

	if s.config.Cache.Enabled && s.cacheManager != nil {
		s.storeInCache(ctx, key, result.Content)
	}

	return response, nil
}

// storeInCache 將模型回應寫回快取
// 寫入失敗不影響已完成的生成結果，只記 warning
func (s *Service) storeInCache(ctx context.Context, key, content string) {
	if err := s.cacheManager.Set(ctx, key, content); err != nil {
		common.LogWarn("快取寫入失敗",
			zap.Error(err),
			zap.Int("content_length", len(content)),
		)
	}
}

// TestConnection 測試供應商連線
func (s *Service) TestConnection(ctx context.Context) bool {
	return s.client.TestConnection(ctx)
}

// QueueStatus 獲取隊列狀態
func (s *Service) QueueStatus() *queue.Status {
	return s.queueManager.GetStatus()
}

// Close 關閉 AI 服務
func (s *Service) Close() error {
	s.queueManager.Close()
	return s.client.Close()
}
