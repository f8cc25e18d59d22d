package recipe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	aiservice "smart-recipe-analyzer/internal/core/ai/service"
	coreRecipe "smart-recipe-analyzer/internal/core/recipe"
	"smart-recipe-analyzer/internal/core/storage"
	"smart-recipe-analyzer/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

type stubAIService struct {
	content string
	err     error
}

func (s *stubAIService) ProcessRequest(ctx context.Context, prompt string) (*aiservice.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &aiservice.Response{Content: s.content}, nil
}

func (s *stubAIService) TestConnection(ctx context.Context) bool { return true }

func setupHandler(t *testing.T, ai *stubAIService) (*Handler, *storage.Store) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "interactions.json"))
	require.NoError(t, err)
	return NewHandler(coreRecipe.NewRecipeService(ai), store), store
}

func performGenerate(h *Handler, body string) *httptest.ResponseRecorder {
	router := gin.New()
	router.POST("/api/recipes/generate", h.HandleGenerate)

	req := httptest.NewRequest(http.MethodPost, "/api/recipes/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func successContent() string {
	data, _ := json.Marshal(map[string]interface{}{
		"recipes": []interface{}{
			map[string]interface{}{
				"name":         "Chicken Fried Rice",
				"ingredients":  []string{"chicken", "rice"},
				"instructions": []string{"cook it"},
				"cookingTime":  "20 minutes",
				"difficulty":   "Easy",
				"nutrition": map[string]interface{}{
					"calories": 400, "protein": "30g", "carbs": "45g",
				},
			},
		},
	})
	return string(data)
}

func TestHandleGenerateSuccess(t *testing.T) {
	h, store := setupHandler(t, &stubAIService{content: successContent()})

	w := performGenerate(h, `{"ingredients": ["  Chicken ", "RICE"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result coreRecipe.RecipeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	require.Len(t, result.Recipes, 1)
	assert.Equal(t, "Chicken Fried Rice", result.Recipes[0].Name)

	// 成功的請求也要留下互動紀錄，食材為正規化後的結果
	records, err := store.GetAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"chicken", "rice"}, records[0].UserInput.Ingredients)
	assert.True(t, records[0].ParsedOutput.Success)
}

func TestHandleGenerateFailureStillLogged(t *testing.T) {
	h, store := setupHandler(t, &stubAIService{content: "not json"})

	w := performGenerate(h, `{"ingredients": ["egg"]}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "Failed to generate recipes")

	// 失敗的請求一樣寫入互動紀錄，原始回應保留
	records, err := store.GetAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].ParsedOutput.Success)
	assert.Equal(t, "not json", records[0].LLMInteraction.RawResponse)
	require.NotNil(t, records[0].Metadata.ErrorMessage)
}

func TestHandleGenerateInvalidBody(t *testing.T) {
	h, store := setupHandler(t, &stubAIService{})

	w := performGenerate(h, `{"not_ingredients": true}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 驗證失敗的請求不寫互動紀錄
	records, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHandleGenerateEmptyIngredients(t *testing.T) {
	h, _ := setupHandler(t, &stubAIService{})

	w := performGenerate(h, `{"ingredients": []}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Ingredients list cannot be empty", body["error"])
}

func TestHandleGenerateBlankIngredients(t *testing.T) {
	h, _ := setupHandler(t, &stubAIService{})

	w := performGenerate(h, `{"ingredients": ["   ", "\t"]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "No valid ingredients found after sanitization", body["error"])
}

func TestHandleSample(t *testing.T) {
	h, _ := setupHandler(t, &stubAIService{})

	router := gin.New()
	router.GET("/api/recipes/sample", h.HandleSample)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recipes/sample", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var result coreRecipe.RecipeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	require.Len(t, result.Recipes, 1)
	assert.Equal(t, "Sample Pasta Dish", result.Recipes[0].Name)
}
