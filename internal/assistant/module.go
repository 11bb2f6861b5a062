// Package assistant provides the AI medical guidance bounded context module.
package assistant

import (
	"context"

	"medicare_backend/internal/adapters/storage"
	"medicare_backend/internal/assistant/handler"
	"medicare_backend/internal/assistant/service"
	apphttp "medicare_backend/internal/http"
	"medicare_backend/platform/ai/gemini"
	"medicare_backend/platform/config"
	"medicare_backend/platform/logger"
	"medicare_backend/platform/validator"
)

// Module is the assistant bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the assistant module, including the AI
// completion client it fronts. storageSvc may be nil when no archive is
// configured.
func NewModule(ctx context.Context, cfg *config.Config, storageSvc storage.StorageService, val *validator.Validator, log *logger.Logger) (*Module, error) {
	aiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:         cfg.GetGeminiAPIKey(),
		Model:          cfg.GetGeminiModel(),
		FallbackModels: cfg.GetGeminiFallbackModels(),
		SystemPrompt:   service.SystemPrompt,
		Timeout:        cfg.GetGeminiTimeout(),
		MaxAttempts:    cfg.GetGeminiMaxAttempts(),
		RetryBaseDelay: cfg.GetGeminiRetryBaseDelay(),
	}, log)
	if err != nil {
		return nil, err
	}

	svc := service.New(aiClient, storageSvc, cfg.GetMinioBucketUploads(), log)
	h := handler.New(svc, val, cfg.GetUploadMaxFileSize(), cfg.GetGeminiAPIKey() != "")

	return &Module{handler: h, service: svc}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "assistant"
}

// RegisterRoutes mounts assistant routes on the provided router context.
// Model-backed endpoints carry the stricter per-IP rate limit; health does not.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.GET("/health", m.handler.Health)

	limited := ctx.API.Group("", ctx.AssistantRateLimiter.RateLimit())
	limited.GET("/test-ai", m.handler.TestAI)
	limited.POST("/analyze-symptoms", m.handler.AnalyzeSymptoms)
	limited.POST("/medicine-info", m.handler.MedicineInfo)
	limited.POST("/medicine-info-image", m.handler.MedicineInfoImage)
	limited.POST("/suggest-medicines", m.handler.SuggestMedicines)
	limited.POST("/check-side-effects", m.handler.CheckSideEffects)
	limited.POST("/analyze-skin", m.handler.AnalyzeSkin)

	// Archive retrieval and cleanup do not touch the model, so they skip the
	// assistant rate limit.
	ctx.API.GET("/archive/*fileKey", m.handler.ArchivedImageURL)
	ctx.API.DELETE("/archive/*fileKey", m.handler.DeleteArchivedImage)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
