package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// 匹配 ${VAR} 或 ${VAR:default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// Loader 配置加载器
type Loader struct {
	configPath string
	config     *Config
	meta       *toml.MetaData
	mu         sync.RWMutex
	validator  *validator.Validate
}

// NewLoader 创建配置加载器
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
		validator:  validator.New(),
	}
}

// Load 加载并解析配置
// 配置文件同目录下存在 .env 时先加载它，已存在的环境变量不会被覆盖
func (l *Loader) Load() (*Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	envPath := filepath.Join(filepath.Dir(l.configPath), ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load .env file %s: %w", envPath, err)
		}
	}

	content, err := os.ReadFile(l.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config file %s: %w", l.configPath, err)
	}

	var cfg Config
	meta, err := toml.Decode(expandEnv(string(content)), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", l.configPath, err)
	}

	applyDefaults(&cfg)

	if err := l.validator.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	l.config = &cfg
	l.meta = &meta
	return &cfg, nil
}

// expandEnv 展开环境变量占位符，支持 ${VAR} 和 ${VAR:default}
func expandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}

		defaultVal := ""
		if len(groups) >= 3 {
			defaultVal = groups[2]
		}
		if val := os.Getenv(groups[1]); val != "" {
			return val
		}
		return defaultVal
	})
}

// Get 线程安全地获取当前配置
func (l *Loader) Get() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// ConfigPath 返回配置文件路径
func (l *Loader) ConfigPath() string {
	return l.configPath
}

// GetSinkOptions 返回指定 sink 的原始 options 以及解码所需的元数据
func (l *Loader) GetSinkOptions(name string) (toml.Primitive, *toml.MetaData, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.config == nil {
		return toml.Primitive{}, nil, fmt.Errorf("config not loaded")
	}
	sinkCfg, ok := l.config.Sinks[name]
	if !ok {
		return toml.Primitive{}, nil, fmt.Errorf("sink %s not found", name)
	}
	return sinkCfg.Options, l.meta, nil
}
