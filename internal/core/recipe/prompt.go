package recipe

import (
	"fmt"
	"strings"
)

// BuildRecipePrompt 建立結構化輸出的 prompt
// 固定 JSON schema 並明確禁止 JSON 以外的文字，降低解析失敗率
func BuildRecipePrompt(ingredients []string) string {
	ingredientsStr := strings.Join(ingredients, ", ")

	return fmt.Sprintf(`
Generate 2-3 creative recipe suggestions using these ingredients: %s

Requirements:
- Each recipe must use the provided ingredients as primary components
- Include estimated cooking time and difficulty level
- Provide realistic nutritional information (calories, protein, carbs)
- Format response as valid JSON only
- Be creative but practical with cooking instructions

Response format (return ONLY valid JSON):
{
  "recipes": [
    {
      "name": "Recipe Name",
      "ingredients": ["ingredient1", "ingredient2", "additional_ingredients_needed"],
      "instructions": ["step1", "step2", "step3"],
      "cookingTime": "X minutes",
      "difficulty": "Easy/Medium/Hard",
      "nutrition": {
        "calories": X,
        "protein": "Xg",
        "carbs": "Xg"
      }
    }
  ]
}

Important: Return ONLY the JSON response, no additional text or explanations.
`, ingredientsStr)
}
