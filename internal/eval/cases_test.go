package eval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airstation/internal/consts"
)

func TestDefaultCases(t *testing.T) {
	cases := DefaultCases()
	require.Len(t, cases, 20)
	require.NoError(t, ValidateCases(cases))

	counts := map[string]int{}
	for _, c := range cases {
		counts[c.ExpectedAgent]++
	}
	assert.Equal(t, map[string]int{
		consts.AgentNameDispatch:       4,
		consts.AgentNameMaintenance:    3,
		consts.AgentNameEnergyAnalysis: 3,
		consts.AgentNameHealth:         3,
		consts.AgentNameReport:         4,
		consts.AgentNameInspection:     3,
	}, counts)

	assert.Equal(t, "如何启动1号空压机？", cases[0].Question)
	assert.Equal(t, "对2号空压机进行巡检，检测是否有异常", cases[18].Question)
	assert.Equal(t, consts.AgentNameInspection, cases[19].ExpectedAgent)
}

func TestLoadCases_TOMLAndYAML(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "cases.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
[[cases]]
question = "停止3号空压机运行"
expected_agent = "dispatch_agent"
`), 0o644))
	cases, err := LoadCases(tomlPath)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, consts.AgentNameDispatch, cases[0].ExpectedAgent)

	yamlPath := filepath.Join(dir, "cases.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
cases:
  - question: 生成今天的运营日报
    expected_agent: report_agent
  - question: 订购5个轴承备件
    expected_agent: maintenance_agent
`), 0o644))
	cases, err = LoadCases(yamlPath)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "订购5个轴承备件", cases[1].Question)
}

func TestLoadCases_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCases(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read cases file")

	jsonPath := filepath.Join(dir, "cases.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{}`), 0o644))
	_, err = LoadCases(jsonPath)
	require.EqualError(t, err, "unsupported cases file extension: .json")

	badAgent := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badAgent, []byte(`
cases:
  - question: 你好
    expected_agent: dispatch_agent
  - question: 今天天气如何
    expected_agent: weather_agent
`), 0o644))
	_, err = LoadCases(badAgent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "case 2")
}

func TestValidateCases(t *testing.T) {
	require.EqualError(t, ValidateCases(nil), "no cases")

	err := ValidateCases([]Case{{Question: "", ExpectedAgent: consts.AgentNameHealth}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "case 1")

	// main_agent 不是合法的预期作答者
	err = ValidateCases([]Case{{Question: "你好", ExpectedAgent: consts.AgentNameMain}})
	require.Error(t, err)
}
