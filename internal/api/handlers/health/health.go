package health

import (
	"net/http"
	"runtime"
	"time"

	recipeService "smart-recipe-analyzer/internal/core/recipe"
	"smart-recipe-analyzer/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Service   string                 `json:"service"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// Handler 健康檢查處理程序
type Handler struct {
	config        *config.Config
	recipeService *recipeService.RecipeService
}

// NewHandler 創建健康檢查處理程序
func NewHandler(cfg *config.Config, recipeSvc *recipeService.RecipeService) *Handler {
	return &Handler{
		config:        cfg,
		recipeService: recipeSvc,
	}
}

// HealthCheck 基本健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   "Smart Recipe Analyzer",
		Timestamp: time.Now(),
		Version:   h.config.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	})
}

// APIHealthCheck 詳細健康檢查，會實際測試 AI 供應商連線
func (h *Handler) APIHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, h.recipeService.ServiceHealth(c.Request.Context()))
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
