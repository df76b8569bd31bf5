package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-kratos/blades"
	"github.com/go-playground/validator/v10"

	"github.com/airstation/config"
)

const defaultTimeout = 60 * time.Second

// Factory 根据 Agent 的模型配置构建 blades.ModelProvider
// 先补默认值再校验，最后交给对应 provider 的 builder
type Factory struct {
	validate *validator.Validate
}

// 所有 provider 的 builder
var builderRegistry = map[string]ModelBuilder{
	"openai":    newOpenAIBuilder(),
	"anthropic": newAnthropicBuilder(),
	"gemini":    newGeminiBuilder(),
}

func NewFactory() *Factory {
	return &Factory{validate: validator.New()}
}

func (f *Factory) Build(ctx context.Context, cfg config.AgentLLMConfig) (blades.ModelProvider, error) {
	cfg.Provider = normalizeProvider(cfg.Provider)

	if err := f.validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate llm config: %w", err)
	}
	if _, err := ParseTimeout(cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	builder, ok := builderRegistry[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
	return builder.Build(ctx, &cfg)
}

// DescribeModel 返回实际生效的模型名，用于日志与评测报告
func DescribeModel(cfg config.AgentLLMConfig) string {
	builder, ok := builderRegistry[normalizeProvider(cfg.Provider)]
	if !ok {
		return cfg.Model
	}
	return builder.GetModel(&cfg)
}

// ParseTimeout 解析单轮调用超时，未设置时为 60s
func ParseTimeout(cfg config.AgentLLMConfig) (time.Duration, error) {
	s := strings.TrimSpace(cfg.Timeout)
	if s == "" {
		return defaultTimeout, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid llm timeout %q: %w", cfg.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid llm timeout %q: must be positive", cfg.Timeout)
	}
	return d, nil
}

func normalizeProvider(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

func applyDefaults(cfg *config.AgentLLMConfig) {
	if cfg.Timeout == "" {
		cfg.Timeout = defaultTimeout.String()
	}
	if cfg.MaxTokens == nil {
		defaultMaxTokens := 2048
		cfg.MaxTokens = &defaultMaxTokens
	}
	// 路由需要稳定输出，默认温度取低值
	if cfg.Temperature == nil {
		defaultTemperature := 0.2
		cfg.Temperature = &defaultTemperature
	}
}
