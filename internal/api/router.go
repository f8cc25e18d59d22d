package api

import (
	"context"
	"net/http"
	"time"

	healthHandler "smart-recipe-analyzer/internal/api/handlers/health"
	interactionHandler "smart-recipe-analyzer/internal/api/handlers/interaction"
	recipeHandler "smart-recipe-analyzer/internal/api/handlers/recipe"
	"smart-recipe-analyzer/internal/api/middleware"
	"smart-recipe-analyzer/internal/core/ai/cache"
	aiservice "smart-recipe-analyzer/internal/core/ai/service"
	recipeService "smart-recipe-analyzer/internal/core/recipe"
	"smart-recipe-analyzer/internal/core/storage"
	"smart-recipe-analyzer/internal/infrastructure/config"
	"smart-recipe-analyzer/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (1MB)，純文字 API 不需要更大
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, cacheManager *cache.CacheManager, store *storage.Store) (*gin.Engine, *aiservice.Service, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制與重複請求過濾
	router.Use(middleware.BodySizeLimit(maxBodySize))
	router.Use(middleware.Deduplication(cfg))

	// 限流
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Int("queue_workers", cfg.Queue.Workers),
		zap.String("model", cfg.OpenRouter.Model),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化服務
	aiService := aiservice.NewService(cfg, cacheManager)
	recipeSvc := recipeService.NewRecipeService(aiService)

	// 全局中間件：設置請求超時
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
			})
			return
		}
	})

	// 創建處理程序
	healthH := healthHandler.NewHandler(cfg, recipeSvc)
	recipeH := recipeHandler.NewHandler(recipeSvc, store)
	interactionH := interactionHandler.NewHandler(store)

	// 健康檢查路由
	router.GET("/health", healthH.HealthCheck)
	router.GET("/live", healthH.LivenessCheck)

	// API 路由組
	api := router.Group("/api")
	{
		api.GET("/health", healthH.APIHealthCheck)

		// 食譜生成
		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.POST("/generate", recipeH.HandleGenerate)
			recipeGroup.GET("/sample", recipeH.HandleSample)
		}

		// 互動紀錄查詢
		interactionGroup := api.Group("/interactions")
		{
			interactionGroup.GET("/all", interactionH.HandleGetAll)
			interactionGroup.GET("/recent", interactionH.HandleGetRecent)
			interactionGroup.GET("/stats", interactionH.HandleGetStats)
			interactionGroup.POST("/export", interactionH.HandleExport)
			interactionGroup.GET("/:id", interactionH.HandleGetByID)
		}
	}

	common.LogInfo("Router setup completed")

	return router, aiService, nil
}
