package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"smart-recipe-analyzer/internal/core/recipe"
	"smart-recipe-analyzer/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrNotFound 互動紀錄不存在
var ErrNotFound = errors.New("interaction not found")

// interactionIDPrefix 互動紀錄 ID 前綴
const interactionIDPrefix = "recipe_interaction_"

// UserInput 使用者輸入
type UserInput struct {
	Ingredients     []string `json:"ingredients"`
	IngredientCount int      `json:"ingredient_count"`
}

// LLMInteraction 模型互動內容
type LLMInteraction struct {
	RawResponse    string `json:"raw_response"`
	ResponseLength int    `json:"response_length"`
	ResponseType   string `json:"response_type"`
}

// ParsedOutput 解析後的輸出
type ParsedOutput struct {
	Recipes     []recipe.Recipe `json:"recipes"`
	RecipeCount int             `json:"recipe_count"`
	Success     bool            `json:"success"`
}

// Metadata 附加資訊
type Metadata struct {
	ErrorMessage     *string `json:"error_message"`
	ProcessingStatus string  `json:"processing_status"` // success 或 failed
}

// InteractionRecord 單次生成嘗試的完整紀錄
// 建立後不可變，只能整筆附加
type InteractionRecord struct {
	InteractionID  string         `json:"interaction_id"`
	Timestamp      string         `json:"timestamp"`
	UserInput      UserInput      `json:"user_input"`
	LLMInteraction LLMInteraction `json:"llm_interaction"`
	ParsedOutput   ParsedOutput   `json:"parsed_output"`
	Metadata       Metadata       `json:"metadata"`
}

// storeDocument 持久化文件格式
// 頂層 interactions 鍵與欄位名稱是既有儲存的相容性契約，不可更動
type storeDocument struct {
	Interactions []InteractionRecord `json:"interactions"`
}

// exportDocument 匯出快照格式
type exportDocument struct {
	ExportInfo struct {
		Timestamp         string `json:"timestamp"`
		TotalInteractions int    `json:"total_interactions"`
		ExportedBy        string `json:"exported_by"`
	} `json:"export_info"`
	Interactions []InteractionRecord `json:"interactions"`
}

// Store 互動紀錄儲存
// 每次附加都是整檔讀取、附加、整檔重寫；mutex 保證進程內單一寫入者。
// 多進程同時寫入仍可能互相覆蓋（last-writer-wins），這是已知限制
type Store struct {
	mu   sync.Mutex
	file string
}

// NewStore 創建互動紀錄儲存，檔案不存在時建立空儲存
func NewStore(file string) (*Store, error) {
	s := &Store{file: file}

	if _, err := os.Stat(file); os.IsNotExist(err) {
		if err := s.write(storeDocument{Interactions: []InteractionRecord{}}); err != nil {
			return nil, fmt.Errorf("failed to create storage file: %w", err)
		}
	}

	return s, nil
}

// read 讀取整份儲存文件，檔案不存在視為空儲存
func (s *Store) read() (storeDocument, error) {
	data, err := os.ReadFile(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return storeDocument{Interactions: []InteractionRecord{}}, nil
		}
		return storeDocument{}, fmt.Errorf("failed to read storage file: %w", err)
	}

	var doc storeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return storeDocument{}, fmt.Errorf("failed to parse storage file: %w", err)
	}
	if doc.Interactions == nil {
		doc.Interactions = []InteractionRecord{}
	}
	return doc, nil
}

// write 整檔重寫儲存文件
func (s *Store) write(doc storeDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage document: %w", err)
	}
	if err := os.WriteFile(s.file, data, 0644); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	return nil
}

// generateInteractionID 以當前時間生成互動 ID
func generateInteractionID(now time.Time) string {
	return interactionIDPrefix + now.Format("20060102_150405")
}

// Append 附加一筆完整的互動紀錄，回傳互動 ID
// 寫入失敗會直接回傳錯誤，靜默遺失紀錄會掩蓋資料遺失
func (s *Store) Append(ingredients []string, rawResponse string, recipes []recipe.Recipe, success bool, errorMessage string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	interactionID := generateInteractionID(now)

	if recipes == nil {
		recipes = []recipe.Recipe{}
	}

	record := InteractionRecord{
		InteractionID: interactionID,
		Timestamp:     now.Format(time.RFC3339),
		UserInput: UserInput{
			Ingredients:     ingredients,
			IngredientCount: len(ingredients),
		},
		LLMInteraction: LLMInteraction{
			RawResponse:    rawResponse,
			ResponseLength: len(rawResponse),
			ResponseType:   "string",
		},
		ParsedOutput: ParsedOutput{
			Recipes:     recipes,
			RecipeCount: len(recipes),
			Success:     success,
		},
		Metadata: Metadata{
			ProcessingStatus: processingStatus(success),
		},
	}
	if errorMessage != "" {
		record.Metadata.ErrorMessage = &errorMessage
	}

	doc, err := s.read()
	if err != nil {
		return "", err
	}

	doc.Interactions = append(doc.Interactions, record)

	if err := s.write(doc); err != nil {
		return "", err
	}

	common.LogInfo("互動紀錄已儲存",
		zap.String("interaction_id", interactionID),
		zap.Bool("success", success),
	)

	return interactionID, nil
}

// processingStatus 轉換處理狀態標籤
func processingStatus(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

// GetAll 取得所有互動紀錄，依附加順序排列
func (s *Store) GetAll() ([]InteractionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Interactions, nil
}

// GetByID 依 ID 取得互動紀錄（線性掃描）
func (s *Store) GetByID(interactionID string) (*InteractionRecord, error) {
	records, err := s.GetAll()
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].InteractionID == interactionID {
			return &records[i], nil
		}
	}
	return nil, ErrNotFound
}

// GetRecent 取得最近 limit 筆紀錄，維持原本的附加順序
// 紀錄不足 limit 筆時全部回傳
func (s *Store) GetRecent(limit int) ([]InteractionRecord, error) {
	records, err := s.GetAll()
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit >= len(records) {
		return records, nil
	}
	return records[len(records)-limit:], nil
}

// Stats 統計互動紀錄
// average_recipes_per_interaction 的分母是成功互動數（沿用既有定義，
// 相對於總互動數會偏高），兩個比率都有除零保護
func (s *Store) Stats() (map[string]interface{}, error) {
	records, err := s.GetAll()
	if err != nil {
		return nil, err
	}

	total := len(records)
	successful := 0
	totalRecipes := 0
	for _, r := range records {
		if r.ParsedOutput.Success {
			successful++
		}
		totalRecipes += r.ParsedOutput.RecipeCount
	}

	successRate := 0.0
	if total > 0 {
		successRate = float64(successful) / float64(total) * 100
	}
	avgRecipes := 0.0
	if successful > 0 {
		avgRecipes = float64(totalRecipes) / float64(successful)
	}

	fileSize := int64(0)
	if info, err := os.Stat(s.file); err == nil {
		fileSize = info.Size()
	}

	return map[string]interface{}{
		"total_interactions":              total,
		"successful_interactions":         successful,
		"failed_interactions":             total - successful,
		"success_rate":                    successRate,
		"total_recipes_generated":         totalRecipes,
		"average_recipes_per_interaction": avgRecipes,
		"storage_file":                    s.file,
		"file_size_bytes":                 fileSize,
	}, nil
}

// Export 匯出所有互動紀錄到時間戳命名的 JSON 快照
func (s *Store) Export(filename string) (string, error) {
	records, err := s.GetAll()
	if err != nil {
		return "", err
	}

	now := time.Now()
	if filename == "" {
		filename = fmt.Sprintf("recipe_export_%s.json", now.Format("20060102_150405"))
	}

	var doc exportDocument
	doc.ExportInfo.Timestamp = now.Format(time.RFC3339)
	doc.ExportInfo.TotalInteractions = len(records)
	doc.ExportInfo.ExportedBy = "Smart Recipe Analyzer"
	doc.Interactions = records

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal export document: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	common.LogInfo("互動紀錄已匯出",
		zap.String("filename", filename),
		zap.Int("total", len(records)),
	)

	return filename, nil
}
