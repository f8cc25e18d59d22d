package recipe

import (
	"context"
	"fmt"
	"strings"
	"time"

	aiservice "smart-recipe-analyzer/internal/core/ai/service"
	"smart-recipe-analyzer/internal/pkg/common"

	"go.uber.org/zap"
)

// AIService 食譜服務依賴的 AI 服務介面
type AIService interface {
	ProcessRequest(ctx context.Context, prompt string) (*aiservice.Response, error)
	TestConnection(ctx context.Context) bool
}

// RecipeService 食譜生成服務
// 負責串接驗證 → 生成 → 解析，並把所有可預期的失敗收斂成 RecipeResult
// --------------------------------------------------
type RecipeService struct {
	aiService AIService
}

// NewRecipeService 創建新的食譜生成服務
func NewRecipeService(aiService AIService) *RecipeService {
	return &RecipeService{
		aiService: aiService,
	}
}

// Generate 根據食材生成食譜
// 第二個回傳值是模型的原始回應，供呼叫端寫入互動紀錄；
// 任何錯誤都不會跨出此邊界，一律轉為失敗的 RecipeResult
func (s *RecipeService) Generate(ctx context.Context, ingredients []string) (RecipeResult, string) {
	// 檢查輸入
	if len(ingredients) == 0 {
		return failureResult("No ingredients provided"), ""
	}

	// 重新過濾空白食材
	valid := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if strings.TrimSpace(ing) != "" {
			valid = append(valid, ing)
		}
	}
	if len(valid) == 0 {
		return failureResult("No valid ingredients found"), ""
	}

	// 呼叫 AI 服務
	prompt := BuildRecipePrompt(valid)
	resp, err := s.aiService.ProcessRequest(ctx, prompt)
	if err != nil {
		common.LogError("食譜生成失敗",
			zap.Error(err),
			zap.Int("ingredient_count", len(valid)),
		)
		return failureResult(fmt.Sprintf("Failed to generate recipes: %s", err.Error())), ""
	}

	// 解析回應
	recipes, err := ParseRecipes(resp.Content)
	if err != nil {
		return failureResult(fmt.Sprintf("Failed to generate recipes: %s", err.Error())), resp.Content
	}

	// 檢查結果
	if len(recipes) == 0 {
		return failureResult("No recipes could be generated with the provided ingredients"), resp.Content
	}

	return RecipeResult{
		Recipes: recipes,
		Success: true,
		Message: fmt.Sprintf("Generated %d recipes using your ingredients", len(recipes)),
	}, resp.Content
}

// Summary 彙總生成結果（記錄用）
func (s *RecipeService) Summary(recipes []Recipe) map[string]interface{} {
	if len(recipes) == 0 {
		return map[string]interface{}{}
	}

	totalCalories := 0
	difficultyCounts := make(map[string]int)
	cookingTimes := make([]string, 0, len(recipes))

	for _, r := range recipes {
		totalCalories += r.Nutrition.Calories
		difficultyCounts[strings.ToLower(r.Difficulty)]++
		cookingTimes = append(cookingTimes, r.CookingTime)
	}

	return map[string]interface{}{
		"total_recipes":           len(recipes),
		"average_calories":        totalCalories / len(recipes),
		"difficulty_distribution": difficultyCounts,
		"cooking_times":           cookingTimes,
	}
}

// ServiceHealth 檢查依賴服務是否正常
func (s *RecipeService) ServiceHealth(ctx context.Context) map[string]interface{} {
	providerStatus := "unavailable"
	status := "degraded"
	if s.aiService.TestConnection(ctx) {
		providerStatus = "operational"
		status = "healthy"
	}

	return map[string]interface{}{
		"status": status,
		"services": map[string]string{
			"ai_provider": providerStatus,
		},
		"timestamp": time.Now().Format(time.RFC3339),
	}
}
