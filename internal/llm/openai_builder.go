package llm

import (
	"context"

	"github.com/go-kratos/blades"
	"github.com/go-kratos/blades/contrib/openai"

	"github.com/airstation/config"
)

// openaiBuilder 同样用于兼容 OpenAI 协议的私有部署（通过 OPENAI_BASE_URL 指定）
type openaiBuilder struct {
	model      string
	modelEnv   string
	baseURL    string
	baseURLEnv string
	apiKeyEnv  string
}

func newOpenAIBuilder() ModelBuilder {
	return &openaiBuilder{
		model:      "gpt-4o-mini",
		modelEnv:   "OPENAI_MODEL_NAME",
		baseURL:    "https://api.openai.com/v1",
		baseURLEnv: "OPENAI_BASE_URL",
		apiKeyEnv:  "OPENAI_API_KEY",
	}
}

func (b *openaiBuilder) GetModel(cfg *config.AgentLLMConfig) string {
	return resolveModel(cfg, b.modelEnv, b.model)
}

func (b *openaiBuilder) GetBaseURL(cfg *config.AgentLLMConfig) string {
	return resolveBaseURL(cfg, b.baseURLEnv, b.baseURL)
}

func (b *openaiBuilder) Build(ctx context.Context, cfg *config.AgentLLMConfig) (blades.ModelProvider, error) {
	apiKey, err := resolveAPIKey(cfg, b.apiKeyEnv)
	if err != nil {
		return nil, err
	}

	opts := openai.Config{
		APIKey:  apiKey,
		BaseURL: b.GetBaseURL(cfg),
	}
	opts.MaxOutputTokens = int64(*cfg.MaxTokens)
	opts.Temperature = *cfg.Temperature

	return openai.NewModel(b.GetModel(cfg), opts), nil
}
