package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/airstation/utils"
)

// Config 根配置结构
type Config struct {
	App          AppConfig              `toml:"app"`
	Log          LogConfig              `toml:"log"`
	Tracing      TracingConfig          `toml:"tracing"`
	LLM          AgentLLMConfig         `toml:"llm"`
	Agents       map[string]AgentConfig `toml:"agents" validate:"dive"`
	Routing      RoutingConfig          `toml:"routing"`
	Conversation ConversationConfig     `toml:"conversation"`
	Session      SessionConfig          `toml:"session"`
	Eval         EvalConfig             `toml:"eval"`
	Metrics      MetricsConfig          `toml:"metrics"`
	Sinks        map[string]SinkConfig  `toml:"sinks" validate:"dive"`
}

// AppConfig 应用全局配置
type AppConfig struct {
	Name string `toml:"name" validate:"required"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=text json"`
	Output string `toml:"output"`
}

// TracingConfig OpenTelemetry 配置
type TracingConfig struct {
	Enabled  bool   `toml:"enabled"`
	Exporter string `toml:"exporter" validate:"omitempty,oneof=stdout noop"`
}

// AgentLLMConfig 单个 Agent 使用的模型配置
type AgentLLMConfig struct {
	Provider    string   `toml:"provider" validate:"required,oneof=openai anthropic gemini"`
	Model       string   `toml:"model"`
	APIKey      string   `toml:"api_key"`
	BaseURL     string   `toml:"base_url"`
	Timeout     string   `toml:"timeout"`
	MaxTokens   *int     `toml:"max_tokens" validate:"omitempty,gt=0"`
	Temperature *float64 `toml:"temperature" validate:"omitempty,gte=0,lte=2"`
}

// AgentConfig Agent 开关与可选的模型覆盖
// LLM 中未设置的字段回落到全局 [llm]
type AgentConfig struct {
	Enabled bool           `toml:"enabled"`
	LLM     AgentLLMConfig `toml:"llm" validate:"-"`
}

// RoutingConfig 路由策略
type RoutingConfig struct {
	Strategy string `toml:"strategy" validate:"oneof=handoff swarm delegate"`
	MaxHops  int    `toml:"max_hops" validate:"gte=1"`
}

// ConversationConfig 会话摘要与裁剪策略
type ConversationConfig struct {
	ContextWindowTokens    int     `toml:"context_window_tokens" validate:"gte=0"`
	CompressionThreshold   float64 `toml:"compression_threshold" validate:"gte=0,lte=1"`
	MaxInContextMessages   int     `toml:"max_in_context_messages" validate:"gte=0"`
	RetainRecentMessages   int     `toml:"retain_recent_messages" validate:"gte=0"`
	SummaryMaxOutputTokens int     `toml:"summary_max_output_tokens" validate:"gte=0"`
	SummaryModelAgent      string  `toml:"summary_model_agent"`
}

// SessionConfig 会话持久化配置，DBPath 为空表示仅内存
type SessionConfig struct {
	DBPath string `toml:"db_path"`
}

// EvalConfig 路由准确性评测配置
type EvalConfig struct {
	CasesFile       string         `toml:"cases_file"`
	Workers         int            `toml:"workers" validate:"gte=1"`
	RatePerSecond   float64        `toml:"rate_per_second" validate:"gte=0"`
	BreakerFailures uint32         `toml:"breaker_failures"`
	Timeout         utils.Duration `toml:"timeout"`
	SharedSession   bool           `toml:"shared_session"`
	MinAccuracy     float64        `toml:"min_accuracy" validate:"gte=0,lte=100"`
}

// MetricsConfig 指标输出配置
type MetricsConfig struct {
	Textfile string `toml:"textfile"`
}

// SinkConfig 评测结果输出端，Options 按 Type 延迟解析
type SinkConfig struct {
	Type        string         `toml:"type" validate:"required,oneof=opensearch pagerduty prometheus jira"`
	Enabled     bool           `toml:"enabled"`
	Description string         `toml:"description"`
	Options     toml.Primitive `toml:"options"`
}

// GetAgentConfig 获取指定 Agent 的配置
func (c *Config) GetAgentConfig(name string) (*AgentConfig, error) {
	acfg, ok := c.Agents[name]
	if !ok {
		return nil, fmt.Errorf("agent config %s not found", name)
	}
	return &acfg, nil
}

// ResolveLLM 合并全局 [llm] 与 Agent 级覆盖，返回该 Agent 实际使用的模型配置
func (c *Config) ResolveLLM(name string) AgentLLMConfig {
	resolved := c.LLM
	acfg, ok := c.Agents[name]
	if !ok {
		return resolved
	}
	o := acfg.LLM
	if o.Provider != "" {
		resolved.Provider = o.Provider
	}
	if o.Model != "" {
		resolved.Model = o.Model
	}
	if o.APIKey != "" {
		resolved.APIKey = o.APIKey
	}
	if o.BaseURL != "" {
		resolved.BaseURL = o.BaseURL
	}
	if o.Timeout != "" {
		resolved.Timeout = o.Timeout
	}
	if o.MaxTokens != nil {
		resolved.MaxTokens = o.MaxTokens
	}
	if o.Temperature != nil {
		resolved.Temperature = o.Temperature
	}
	return resolved
}

// EnabledAgents 返回所有启用的 Agent 名称
func (c *Config) EnabledAgents() []string {
	names := make([]string, 0, len(c.Agents))
	for name, acfg := range c.Agents {
		if acfg.Enabled {
			names = append(names, name)
		}
	}
	return names
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "air-station"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.Routing.Strategy == "" {
		cfg.Routing.Strategy = "handoff"
	}
	if cfg.Routing.MaxHops == 0 {
		cfg.Routing.MaxHops = 8
	}
	if cfg.Conversation.ContextWindowTokens == 0 {
		cfg.Conversation.ContextWindowTokens = 128000
	}
	if cfg.Conversation.CompressionThreshold == 0 {
		cfg.Conversation.CompressionThreshold = 0.8
	}
	if cfg.Conversation.MaxInContextMessages == 0 {
		cfg.Conversation.MaxInContextMessages = 50
	}
	if cfg.Conversation.RetainRecentMessages == 0 {
		cfg.Conversation.RetainRecentMessages = 10
	}
	if cfg.Eval.Workers == 0 {
		cfg.Eval.Workers = 1
	}
}
