package llm

import (
	"context"

	"github.com/go-kratos/blades"
	"github.com/go-kratos/blades/contrib/gemini"
	"google.golang.org/genai"

	"github.com/airstation/config"
)

// geminiBuilder 使用 genai 默认 endpoint，BaseURL 仅作展示
type geminiBuilder struct {
	model     string
	modelEnv  string
	apiKeyEnv string
}

func newGeminiBuilder() ModelBuilder {
	return &geminiBuilder{
		model:     "gemini-2.5-flash",
		modelEnv:  "GEMINI_MODEL_NAME",
		apiKeyEnv: "GEMINI_API_KEY,GOOGLE_API_KEY",
	}
}

func (b *geminiBuilder) GetModel(cfg *config.AgentLLMConfig) string {
	return resolveModel(cfg, b.modelEnv, b.model)
}

func (b *geminiBuilder) GetBaseURL(cfg *config.AgentLLMConfig) string {
	return cfg.BaseURL
}

func (b *geminiBuilder) Build(ctx context.Context, cfg *config.AgentLLMConfig) (blades.ModelProvider, error) {
	apiKey, err := resolveAPIKey(cfg, b.apiKeyEnv)
	if err != nil {
		return nil, err
	}

	var opts gemini.Config
	opts.ClientConfig = genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	opts.MaxOutputTokens = int32(*cfg.MaxTokens)
	opts.Temperature = float32(*cfg.Temperature)

	return gemini.NewModel(ctx, b.GetModel(cfg), opts)
}
