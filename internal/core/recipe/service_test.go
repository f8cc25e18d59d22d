package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	aiservice "smart-recipe-analyzer/internal/core/ai/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAIService 可控制回應內容與錯誤的假 AI 服務
type mockAIService struct {
	content   string
	err       error
	connected bool
	prompts   []string
}

func (m *mockAIService) ProcessRequest(ctx context.Context, prompt string) (*aiservice.Response, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return nil, m.err
	}
	return &aiservice.Response{Content: m.content}, nil
}

func (m *mockAIService) TestConnection(ctx context.Context) bool {
	return m.connected
}

func validResponse(names ...string) string {
	recipes := make([]interface{}, 0, len(names))
	for _, n := range names {
		recipes = append(recipes, validRecipeJSON(n))
	}
	data, _ := json.Marshal(map[string]interface{}{"recipes": recipes})
	return string(data)
}

func TestGenerateSuccess(t *testing.T) {
	mock := &mockAIService{content: validResponse("Chicken Fried Rice", "Garlic Chicken")}
	svc := NewRecipeService(mock)

	result, raw := svc.Generate(context.Background(), []string{"chicken", "rice"})

	require.True(t, result.Success)
	require.Len(t, result.Recipes, 2)
	assert.Equal(t, "Generated 2 recipes using your ingredients", result.Message)
	assert.Equal(t, mock.content, raw)
	assert.Empty(t, result.FailureMessage())

	// 提示詞必須包含所有食材
	require.Len(t, mock.prompts, 1)
	assert.Contains(t, mock.prompts[0], "chicken, rice")
}

func TestGenerateEmptyIngredients(t *testing.T) {
	mock := &mockAIService{}
	svc := NewRecipeService(mock)

	result, raw := svc.Generate(context.Background(), nil)

	assert.False(t, result.Success)
	assert.Equal(t, "No ingredients provided", result.Message)
	assert.Empty(t, result.Recipes)
	assert.Empty(t, raw)
	// 不該呼叫 AI 服務
	assert.Empty(t, mock.prompts)
}

func TestGenerateAllBlankIngredients(t *testing.T) {
	mock := &mockAIService{}
	svc := NewRecipeService(mock)

	result, _ := svc.Generate(context.Background(), []string{"  ", "\t"})

	assert.False(t, result.Success)
	assert.Equal(t, "No valid ingredients found", result.Message)
	assert.Empty(t, mock.prompts)
}

func TestGenerateProviderError(t *testing.T) {
	mock := &mockAIService{err: errors.New("connection refused")}
	svc := NewRecipeService(mock)

	result, raw := svc.Generate(context.Background(), []string{"egg"})

	assert.False(t, result.Success)
	assert.Equal(t, "Failed to generate recipes: connection refused", result.Message)
	assert.Empty(t, result.Recipes)
	assert.Empty(t, raw)
}

func TestGenerateUnparseableResponse(t *testing.T) {
	mock := &mockAIService{content: "sorry, I can't help with that"}
	svc := NewRecipeService(mock)

	result, raw := svc.Generate(context.Background(), []string{"egg"})

	// 解析失敗仍回傳原始回應，供互動紀錄留存
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Failed to generate recipes")
	assert.Equal(t, mock.content, raw)
	assert.Equal(t, result.Message, result.FailureMessage())
}

func TestGenerateEmptyRecipeList(t *testing.T) {
	mock := &mockAIService{content: `{"recipes":[]}`}
	svc := NewRecipeService(mock)

	result, raw := svc.Generate(context.Background(), []string{"egg"})

	assert.False(t, result.Success)
	assert.Equal(t, "No recipes could be generated with the provided ingredients", result.Message)
	assert.Equal(t, mock.content, raw)
}

func TestGenerateSuccessInvariant(t *testing.T) {
	// success 為 true 時 recipes 必定非空
	mock := &mockAIService{content: validResponse("Solo")}
	svc := NewRecipeService(mock)

	result, _ := svc.Generate(context.Background(), []string{"egg"})
	require.True(t, result.Success)
	assert.NotEmpty(t, result.Recipes)
}

func TestSummary(t *testing.T) {
	svc := NewRecipeService(&mockAIService{})

	recipes := []Recipe{
		{Difficulty: "Easy", CookingTime: "20 minutes", Nutrition: NutritionInfo{Calories: 400}},
		{Difficulty: "easy", CookingTime: "30 minutes", Nutrition: NutritionInfo{Calories: 600}},
		{Difficulty: "Hard", CookingTime: "1 hour", Nutrition: NutritionInfo{Calories: 500}},
	}

	summary := svc.Summary(recipes)

	assert.Equal(t, 3, summary["total_recipes"])
	assert.Equal(t, 500, summary["average_calories"])
	assert.Equal(t, map[string]int{"easy": 2, "hard": 1}, summary["difficulty_distribution"])
	assert.Equal(t, []string{"20 minutes", "30 minutes", "1 hour"}, summary["cooking_times"])
}

func TestSummaryEmpty(t *testing.T) {
	svc := NewRecipeService(&mockAIService{})
	assert.Empty(t, svc.Summary(nil))
}

func TestServiceHealth(t *testing.T) {
	svc := NewRecipeService(&mockAIService{connected: true})
	health := svc.ServiceHealth(context.Background())
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, map[string]string{"ai_provider": "operational"}, health["services"])

	svc = NewRecipeService(&mockAIService{connected: false})
	health = svc.ServiceHealth(context.Background())
	assert.Equal(t, "degraded", health["status"])
	assert.Equal(t, map[string]string{"ai_provider": "unavailable"}, health["services"])
}
