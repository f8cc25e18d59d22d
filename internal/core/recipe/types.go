package recipe

// NutritionInfo 營養資訊
// protein/carbs 為顯示用字串（例如 "12g"），不做單位驗證
type NutritionInfo struct {
	Calories int    `json:"calories"`
	Protein  string `json:"protein"`
	Carbs    string `json:"carbs"`
}

// Recipe 單份食譜
// 欄位名稱沿用既有儲存格式，cookingTime 為駝峰式
type Recipe struct {
	Name         string        `json:"name"`
	Ingredients  []string      `json:"ingredients"`
	Instructions []string      `json:"instructions"`
	CookingTime  string        `json:"cookingTime"`
	Difficulty   string        `json:"difficulty"` // 預期為 Easy/Medium/Hard，但不強制
	Nutrition    NutritionInfo `json:"nutrition"`
}

// RecipeResult 生成操作的統一結果封套
// success 為 true 時 recipes 必定非空；false 時 recipes 為空且 message 說明原因
type RecipeResult struct {
	Recipes []Recipe `json:"recipes"`
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
}

// FailureMessage 失敗時的錯誤訊息，成功時為空字串
// 互動紀錄的 metadata.error_message 只在失敗時填寫
func (r RecipeResult) FailureMessage() string {
	if r.Success {
		return ""
	}
	return r.Message
}

// failureResult 創建失敗結果
func failureResult(message string) RecipeResult {
	return RecipeResult{
		Recipes: []Recipe{},
		Success: false,
		Message: message,
	}
}
