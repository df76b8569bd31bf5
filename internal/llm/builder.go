package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-kratos/blades"

	"github.com/airstation/config"
)

// ModelBuilder 单个 provider 的构建器
type ModelBuilder interface {
	GetModel(cfg *config.AgentLLMConfig) string
	GetBaseURL(cfg *config.AgentLLMConfig) string
	Build(ctx context.Context, cfg *config.AgentLLMConfig) (blades.ModelProvider, error)
}

// lookupEnv 依次读取逗号分隔的环境变量，返回第一个非空值
func lookupEnv(keys string) string {
	for _, k := range strings.Split(keys, ",") {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// resolveModel 优先级：配置 > 环境变量 > 默认值
func resolveModel(cfg *config.AgentLLMConfig, envKeys, fallback string) string {
	if m := strings.TrimSpace(cfg.Model); m != "" {
		return m
	}
	if m := lookupEnv(envKeys); m != "" {
		return m
	}
	return fallback
}

func resolveAPIKey(cfg *config.AgentLLMConfig, envKeys string) (string, error) {
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		return key, nil
	}
	if key := lookupEnv(envKeys); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s api key not configured (api_key or %s)", cfg.Provider, envKeys)
}

// resolveBaseURL 优先级：配置 > 环境变量 > 默认值
func resolveBaseURL(cfg *config.AgentLLMConfig, envKeys, fallback string) string {
	if u := strings.TrimSpace(cfg.BaseURL); u != "" {
		return u
	}
	if u := lookupEnv(envKeys); u != "" {
		return u
	}
	return fallback
}
