package recipe

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxIngredientLength 單一食材名稱長度上限（以字元計，非位元組）
const maxIngredientLength = 100

// NormalizeIngredients 清理並正規化食材名稱
// 去除前後空白、轉為小寫；修剪後為空或超長的項目直接丟棄，不截斷
// 保留原始順序，不去重
func NormalizeIngredients(ingredients []string) []string {
	sanitized := make([]string, 0, len(ingredients))
	for _, ingredient := range ingredients {
		cleaned := strings.ToLower(strings.TrimSpace(ingredient))
		if cleaned != "" && utf8.RuneCountInString(cleaned) <= maxIngredientLength {
			sanitized = append(sanitized, cleaned)
		}
	}
	return sanitized
}

// ValidateIngredients 驗證食材清單
// 與 NormalizeIngredients 互相獨立；驗證通過不保證正規化後仍非空，
// 呼叫端需在正規化後再次檢查
func ValidateIngredients(ingredients []string) (bool, string) {
	if len(ingredients) == 0 {
		return false, "Ingredients list cannot be empty"
	}

	// 檢查過長的食材名稱
	for _, ingredient := range ingredients {
		if utf8.RuneCountInString(strings.TrimSpace(ingredient)) > maxIngredientLength {
			return false, fmt.Sprintf("Ingredient '%s' is too long", ingredient)
		}
	}

	return true, ""
}
