package sink

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// OptionsParser 解析器函数类型
type OptionsParser func(meta *toml.MetaData, primitive toml.Primitive) (any, error)

var optionsParsers = struct {
	mu      sync.RWMutex
	parsers map[SinkType]OptionsParser
}{
	parsers: make(map[SinkType]OptionsParser),
}

var optionsValidator = validator.New()

// RegisterOptionsParser 注册 Options 解析器
func RegisterOptionsParser(sinkType SinkType, parser OptionsParser) {
	optionsParsers.mu.Lock()
	defer optionsParsers.mu.Unlock()
	optionsParsers.parsers[sinkType] = parser
}

// GetOptionsParser 获取解析器
func GetOptionsParser(sinkType SinkType) (OptionsParser, bool) {
	optionsParsers.mu.RLock()
	defer optionsParsers.mu.RUnlock()
	parser, ok := optionsParsers.parsers[sinkType]
	return parser, ok
}

// ParseOptions 把 TOML Primitive 解析到具体的配置结构并校验
func ParseOptions[T any](meta *toml.MetaData, primitive toml.Primitive, typeName SinkType) (*T, error) {
	var opts T
	if err := meta.PrimitiveDecode(primitive, &opts); err != nil {
		return nil, fmt.Errorf("decode %s options: %w", typeName, err)
	}
	if err := optionsValidator.Struct(&opts); err != nil {
		return nil, fmt.Errorf("validate %s options: %w", typeName, err)
	}
	return &opts, nil
}
