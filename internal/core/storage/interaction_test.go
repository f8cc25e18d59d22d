package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"smart-recipe-analyzer/internal/core/recipe"
	"smart-recipe-analyzer/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	// 測試環境不寫日誌檔
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "interactions.json"))
	require.NoError(t, err)
	return store
}

func sampleRecipe(name string) recipe.Recipe {
	return recipe.Recipe{
		Name:         name,
		Ingredients:  []string{"chicken", "rice"},
		Instructions: []string{"cook it"},
		CookingTime:  "20 minutes",
		Difficulty:   "Easy",
		Nutrition:    recipe.NutritionInfo{Calories: 400, Protein: "30g", Carbs: "45g"},
	}
}

func TestNewStoreCreatesEmptyFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "interactions.json")
	_, err := NewStore(file)
	require.NoError(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []interface{}{}, doc["interactions"])
}

func TestAppendAndGetByID(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Append(
		[]string{"chicken", "rice"},
		`{"recipes":[...]}`,
		[]recipe.Recipe{sampleRecipe("Chicken Fried Rice")},
		true,
		"",
	)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "recipe_interaction_"))

	record, err := store.GetByID(id)
	require.NoError(t, err)

	assert.Equal(t, id, record.InteractionID)
	assert.Equal(t, []string{"chicken", "rice"}, record.UserInput.Ingredients)
	assert.Equal(t, 2, record.UserInput.IngredientCount)
	assert.Equal(t, `{"recipes":[...]}`, record.LLMInteraction.RawResponse)
	assert.Equal(t, len(`{"recipes":[...]}`), record.LLMInteraction.ResponseLength)
	assert.Equal(t, "string", record.LLMInteraction.ResponseType)
	assert.Equal(t, 1, record.ParsedOutput.RecipeCount)
	assert.True(t, record.ParsedOutput.Success)
	assert.Equal(t, "success", record.Metadata.ProcessingStatus)
	assert.Nil(t, record.Metadata.ErrorMessage)
	assert.NotEmpty(t, record.Timestamp)
}

func TestAppendFailedInteraction(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Append([]string{"egg"}, "garbage output", nil, false, "Failed to generate recipes: bad JSON")
	require.NoError(t, err)

	record, err := store.GetByID(id)
	require.NoError(t, err)

	assert.False(t, record.ParsedOutput.Success)
	assert.Equal(t, "failed", record.Metadata.ProcessingStatus)
	require.NotNil(t, record.Metadata.ErrorMessage)
	assert.Equal(t, "Failed to generate recipes: bad JSON", *record.Metadata.ErrorMessage)
	// nil 食譜序列化為空陣列
	assert.NotNil(t, record.ParsedOutput.Recipes)
	assert.Empty(t, record.ParsedOutput.Recipes)
}

func TestGetByIDNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetByID("recipe_interaction_19990101_000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAllPreservesOrder(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		_, err := store.Append([]string{"egg"}, "raw", nil, false, "err")
		require.NoError(t, err)
	}

	records, err := store.GetAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
}

func TestGetRecent(t *testing.T) {
	store := newTestStore(t)

	ingredients := [][]string{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}}
	for _, ing := range ingredients {
		_, err := store.Append(ing, "raw", nil, false, "err")
		require.NoError(t, err)
	}

	recent, err := store.GetRecent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	// 最後 2 筆，維持附加順序
	assert.Equal(t, []string{"d"}, recent[0].UserInput.Ingredients)
	assert.Equal(t, []string{"e"}, recent[1].UserInput.Ingredients)

	// limit 超過筆數時全部回傳
	all, err := store.GetRecent(100)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestGetRecentEmptyStore(t *testing.T) {
	store := newTestStore(t)

	recent, err := store.GetRecent(10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestStatsEmptyStore(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.Stats()
	require.NoError(t, err)

	// 除零保護
	assert.Equal(t, 0, stats["total_interactions"])
	assert.Equal(t, 0, stats["successful_interactions"])
	assert.Equal(t, 0, stats["failed_interactions"])
	assert.Equal(t, 0.0, stats["success_rate"])
	assert.Equal(t, 0, stats["total_recipes_generated"])
	assert.Equal(t, 0.0, stats["average_recipes_per_interaction"])
	assert.Equal(t, store.file, stats["storage_file"])
}

func TestStats(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Append([]string{"a"}, "raw", []recipe.Recipe{sampleRecipe("One"), sampleRecipe("Two")}, true, "")
	require.NoError(t, err)
	_, err = store.Append([]string{"b"}, "raw", []recipe.Recipe{sampleRecipe("Three")}, true, "")
	require.NoError(t, err)
	_, err = store.Append([]string{"c"}, "raw", nil, false, "boom")
	require.NoError(t, err)

	stats, err := store.Stats()
	require.NoError(t, err)

	assert.Equal(t, 3, stats["total_interactions"])
	assert.Equal(t, 2, stats["successful_interactions"])
	assert.Equal(t, 1, stats["failed_interactions"])
	assert.InDelta(t, 66.67, stats["success_rate"].(float64), 0.01)
	assert.Equal(t, 3, stats["total_recipes_generated"])
	// 平均值分母為成功互動數
	assert.Equal(t, 1.5, stats["average_recipes_per_interaction"])
	assert.Greater(t, stats["file_size_bytes"].(int64), int64(0))
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "interactions.json"))
	require.NoError(t, err)

	_, err = store.Append([]string{"egg"}, "raw", []recipe.Recipe{sampleRecipe("One")}, true, "")
	require.NoError(t, err)

	target := filepath.Join(dir, "export.json")
	filename, err := store.Export(target)
	require.NoError(t, err)
	assert.Equal(t, target, filename)

	data, err := os.ReadFile(filename)
	require.NoError(t, err)

	var doc exportDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 1, doc.ExportInfo.TotalInteractions)
	assert.Equal(t, "Smart Recipe Analyzer", doc.ExportInfo.ExportedBy)
	assert.NotEmpty(t, doc.ExportInfo.Timestamp)
	require.Len(t, doc.Interactions, 1)
	assert.Equal(t, "One", doc.Interactions[0].ParsedOutput.Recipes[0].Name)
}

func TestExportDefaultFilename(t *testing.T) {
	store := newTestStore(t)

	// 預設檔名帶時間戳，寫在當前工作目錄
	cwd, err := os.Getwd()
	require.NoError(t, err)
	tmp := t.TempDir()
	require.NoError(t, os.Chdir(tmp))
	defer os.Chdir(cwd)

	filename, err := store.Export("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "recipe_export_"))
	assert.True(t, strings.HasSuffix(filename, ".json"))

	_, err = os.Stat(filepath.Join(tmp, filename))
	assert.NoError(t, err)
}

func TestStoreSurvivesReopen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "interactions.json")

	store, err := NewStore(file)
	require.NoError(t, err)
	id, err := store.Append([]string{"egg"}, "raw", nil, false, "err")
	require.NoError(t, err)

	// 重新開啟同一檔案，紀錄仍在
	reopened, err := NewStore(file)
	require.NoError(t, err)
	record, err := reopened.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, id, record.InteractionID)
}
