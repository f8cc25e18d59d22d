package recipe

import (
	"net/http"

	coreRecipe "smart-recipe-analyzer/internal/core/recipe"
	"smart-recipe-analyzer/internal/core/storage"
	"smart-recipe-analyzer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateRequest 食譜生成請求
type GenerateRequest struct {
	Ingredients []string `json:"ingredients" binding:"required"` // 可用的食材清單
}

// Handler 食譜處理程序
type Handler struct {
	recipeService *coreRecipe.RecipeService
	store         *storage.Store
}

// NewHandler 創建新的食譜處理程序
func NewHandler(recipeService *coreRecipe.RecipeService, store *storage.Store) *Handler {
	return &Handler{
		recipeService: recipeService,
		store:         store,
	}
}

// HandleGenerate 根據食材生成食譜
// 每次生成嘗試（不論成敗）都會寫入一筆互動紀錄；
// 紀錄寫入與生成流程彼此獨立，寫入失敗不影響已完成的生成結果
func (h *Handler) HandleGenerate(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = common.GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}

	common.LogInfo("開始處理食譜生成請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
	)

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	// 驗證食材清單
	if ok, reason := coreRecipe.ValidateIngredients(req.Ingredients); !ok {
		common.LogWarn("食材驗證失敗",
			zap.String("reason", reason),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": reason})
		return
	}

	// 正規化食材清單
	sanitized := coreRecipe.NormalizeIngredients(req.Ingredients)
	if len(sanitized) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid ingredients found after sanitization"})
		return
	}

	// 生成食譜
	result, rawResponse := h.recipeService.Generate(c.Request.Context(), sanitized)

	// 寫入互動紀錄（與生成流程獨立）
	interactionID, err := h.store.Append(sanitized, rawResponse, result.Recipes, result.Success, result.FailureMessage())
	if err != nil {
		common.LogError("互動紀錄寫入失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
	}

	if !result.Success {
		common.LogError("食譜生成失敗",
			zap.String("message", result.Message),
			zap.String("request_id", requestID),
			zap.String("interaction_id", interactionID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Message})
		return
	}

	common.LogInfo("食譜生成成功",
		zap.String("request_id", requestID),
		zap.String("interaction_id", interactionID),
		zap.Any("summary", h.recipeService.Summary(result.Recipes)),
	)

	c.JSON(http.StatusOK, result)
}

// HandleSample 取得範例食譜（不需要 API key，測試用）
func (h *Handler) HandleSample(c *gin.Context) {
	sample := coreRecipe.Recipe{
		Name:        "Sample Pasta Dish",
		Ingredients: []string{"pasta", "garlic", "olive oil", "parmesan"},
		Instructions: []string{
			"Boil pasta according to package instructions",
			"Sauté minced garlic in olive oil",
			"Toss pasta with garlic oil and parmesan",
		},
		CookingTime: "15 minutes",
		Difficulty:  "Easy",
		Nutrition: coreRecipe.NutritionInfo{
			Calories: 400,
			Protein:  "12g",
			Carbs:    "65g",
		},
	}

	c.JSON(http.StatusOK, coreRecipe.RecipeResult{
		Recipes: []coreRecipe.Recipe{sample},
		Success: true,
		Message: "Sample recipe for testing purposes",
	})
}
