package eval

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed cases.toml
var defaultCasesTOML string

// Case 一道路由测试题
type Case struct {
	Question      string `toml:"question" yaml:"question" json:"question" validate:"required"`
	ExpectedAgent string `toml:"expected_agent" yaml:"expected_agent" json:"expected_agent" validate:"required,oneof=dispatch_agent maintenance_agent energy_analysis_agent health_agent report_agent inspection_agent"`
}

type caseFile struct {
	Cases []Case `toml:"cases" yaml:"cases"`
}

var caseValidator = validator.New()

// DefaultCases 返回内置的 20 道测试题
func DefaultCases() []Case {
	var f caseFile
	if _, err := toml.Decode(defaultCasesTOML, &f); err != nil {
		panic(fmt.Sprintf("decode embedded cases: %v", err))
	}
	return f.Cases
}

// LoadCases 按扩展名读取 TOML 或 YAML 用例文件
func LoadCases(path string) ([]Case, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cases file %s: %w", path, err)
	}

	var f caseFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(content), &f); err != nil {
			return nil, fmt.Errorf("parse cases file %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &f); err != nil {
			return nil, fmt.Errorf("parse cases file %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported cases file extension: %s", ext)
	}

	if err := ValidateCases(f.Cases); err != nil {
		return nil, fmt.Errorf("validate cases file %s: %w", path, err)
	}
	return f.Cases, nil
}

// ValidateCases 校验用例，错误信息中的序号从 1 开始
func ValidateCases(cases []Case) error {
	if len(cases) == 0 {
		return fmt.Errorf("no cases")
	}
	for i, c := range cases {
		if err := caseValidator.Struct(c); err != nil {
			return fmt.Errorf("case %d: %w", i+1, err)
		}
	}
	return nil
}
