package recipe

import (
	"encoding/json"
	"fmt"
	"strings"

	"smart-recipe-analyzer/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	jsonFenceMarker    = "```json"
	genericFenceMarker = "```"
)

// extractJSONCandidate 從模型回應中抽出 JSON 候選字串
// 依序嘗試：```json 圍欄 → 一般 ``` 圍欄 → 整段文字
// 圍欄內容取開頭標記之後到最後一個 ``` 之間的子字串
func extractJSONCandidate(raw string) string {
	cleaned := strings.TrimSpace(raw)

	for _, marker := range []string{jsonFenceMarker, genericFenceMarker} {
		start := strings.Index(cleaned, marker)
		if start == -1 {
			continue
		}
		start += len(marker)
		end := strings.LastIndex(cleaned, genericFenceMarker)
		if end <= start {
			// 沒有閉合標記，候選視為空字串，後續解析自然失敗
			return ""
		}
		return strings.TrimSpace(cleaned[start:end])
	}

	return cleaned
}

// recipeCandidate 逐筆驗證用的中繼結構
// 指標欄位用來區分「缺欄位」與「零值」
type recipeCandidate struct {
	Name         *string   `json:"name"`
	Ingredients  *[]string `json:"ingredients"`
	Instructions *[]string `json:"instructions"`
	CookingTime  *string   `json:"cookingTime"`
	Difficulty   *string   `json:"difficulty"`
	Nutrition    *struct {
		Calories *int    `json:"calories"`
		Protein  *string `json:"protein"`
		Carbs    *string `json:"carbs"`
	} `json:"nutrition"`
}

// buildRecipe 以 construct-or-reject 的方式驗證單筆候選
// 任何缺欄位或型別錯誤都會拒絕整筆，不做修補
func buildRecipe(raw json.RawMessage) (Recipe, error) {
	var c recipeCandidate
	if err := json.Unmarshal(raw, &c); err != nil {
		return Recipe{}, fmt.Errorf("invalid field type: %w", err)
	}

	switch {
	case c.Name == nil || *c.Name == "":
		return Recipe{}, fmt.Errorf("missing required field 'name'")
	case c.Ingredients == nil || len(*c.Ingredients) == 0:
		return Recipe{}, fmt.Errorf("missing required field 'ingredients'")
	case c.Instructions == nil || len(*c.Instructions) == 0:
		return Recipe{}, fmt.Errorf("missing required field 'instructions'")
	case c.CookingTime == nil:
		return Recipe{}, fmt.Errorf("missing required field 'cookingTime'")
	case c.Difficulty == nil:
		return Recipe{}, fmt.Errorf("missing required field 'difficulty'")
	case c.Nutrition == nil:
		return Recipe{}, fmt.Errorf("missing required field 'nutrition'")
	case c.Nutrition.Calories == nil:
		return Recipe{}, fmt.Errorf("missing required field 'nutrition.calories'")
	case c.Nutrition.Protein == nil:
		return Recipe{}, fmt.Errorf("missing required field 'nutrition.protein'")
	case c.Nutrition.Carbs == nil:
		return Recipe{}, fmt.Errorf("missing required field 'nutrition.carbs'")
	}

	return Recipe{
		Name:         *c.Name,
		Ingredients:  *c.Ingredients,
		Instructions: *c.Instructions,
		CookingTime:  *c.CookingTime,
		Difficulty:   *c.Difficulty,
		Nutrition: NutritionInfo{
			Calories: *c.Nutrition.Calories,
			Protein:  *c.Nutrition.Protein,
			Carbs:    *c.Nutrition.Carbs,
		},
	}, nil
}

// ParseRecipes 解析模型原始回應為食譜清單
// 外層 JSON 解析失敗是整批失敗（ParseError）；
// 單筆食譜驗證失敗只記 warning 並跳過該筆，回傳清單可能為空
func ParseRecipes(raw string) ([]Recipe, error) {
	candidate := extractJSONCandidate(raw)

	var envelope struct {
		Recipes []json.RawMessage `json:"recipes"`
	}
	if err := common.ParseJSON(candidate, &envelope); err != nil {
		common.LogError("模型回應 JSON 解析失敗",
			zap.Error(err),
			zap.Int("response_length", len(raw)),
		)
		return nil, common.NewParseError("failed to parse AI response as JSON", err)
	}

	recipes := make([]Recipe, 0, len(envelope.Recipes))
	for i, rawRecipe := range envelope.Recipes {
		recipe, err := buildRecipe(rawRecipe)
		if err != nil {
			common.LogWarn("跳過無效的食譜",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		recipes = append(recipes, recipe)
	}

	return recipes, nil
}
