package interaction

import (
	"errors"
	"net/http"
	"strconv"

	"smart-recipe-analyzer/internal/core/storage"
	"smart-recipe-analyzer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// defaultRecentLimit 最近紀錄的預設筆數
const defaultRecentLimit = 10

// Handler 互動紀錄處理程序
type Handler struct {
	store *storage.Store
}

// NewHandler 創建互動紀錄處理程序
func NewHandler(store *storage.Store) *Handler {
	return &Handler{
		store: store,
	}
}

// HandleGetAll 取得所有互動紀錄
func (h *Handler) HandleGetAll(c *gin.Context) {
	interactions, err := h.store.GetAll()
	if err != nil {
		common.LogError("讀取互動紀錄失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read interactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"interactions": interactions,
		"total":        len(interactions),
	})
}

// HandleGetRecent 取得最近的互動紀錄
func (h *Handler) HandleGetRecent(c *gin.Context) {
	limit := defaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	interactions, err := h.store.GetRecent(limit)
	if err != nil {
		common.LogError("讀取互動紀錄失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read interactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"interactions": interactions,
		"total":        len(interactions),
		"limit":        limit,
	})
}

// HandleGetStats 取得互動紀錄統計
func (h *Handler) HandleGetStats(c *gin.Context) {
	stats, err := h.store.Stats()
	if err != nil {
		common.LogError("統計互動紀錄失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HandleGetByID 依 ID 取得單筆互動紀錄
func (h *Handler) HandleGetByID(c *gin.Context) {
	interactionID := c.Param("id")

	record, err := h.store.GetByID(interactionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Interaction not found"})
			return
		}
		common.LogError("讀取互動紀錄失敗",
			zap.Error(err),
			zap.String("interaction_id", interactionID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read interaction"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// HandleExport 匯出所有互動紀錄到快照檔案
func (h *Handler) HandleExport(c *gin.Context) {
	var req struct {
		Filename string `json:"filename"`
	}
	// 請求體可省略，省略時使用時間戳預設檔名
	_ = c.ShouldBindJSON(&req)

	filename, err := h.store.Export(req.Filename)
	if err != nil {
		common.LogError("匯出互動紀錄失敗", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export interactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename": filename,
	})
}
