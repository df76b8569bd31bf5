package eval

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	start := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return NewReport("handoff", "openai/gpt-4o-mini", start, start.Add(time.Minute), []Result{
		{Index: 1, Question: "如何启动1号空压机？", Expected: "dispatch_agent", Actual: "dispatch_agent", Correct: true},
		{Index: 2, Question: "订购5个轴承备件", Expected: "maintenance_agent", Actual: "health_agent"},
		{Index: 3, Question: "生成今天的运营日报", Expected: "report_agent", Error: "api unavailable"},
	})
}

func TestTextReporter_NoColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextReporter(true).Render(&buf, sampleReport()))

	want := strings.Join([]string{
		rule,
		"多智能体识别准确性测试",
		rule,
		"路由策略：handoff",
		"测试用例数：3",
		"开始执行测试...",
		"",
		`问题1: "如何启动1号空压机？"`,
		"  预期：dispatch_agent | 实际：dispatch_agent | ✓",
		"",
		`问题2: "订购5个轴承备件"`,
		"  预期：maintenance_agent | 实际：health_agent | ✗",
		"",
		`问题3: "生成今天的运营日报"`,
		"  测试失败: api unavailable",
		"",
		rule,
		"测试摘要",
		rule,
		"总题数：3",
		"正确：1",
		"错误：2",
		"准确率：33.33%",
		"错误详情：",
		"- 问题2: 预期 maintenance_agent, 实际 health_agent",
		"",
		"程序执行耗时: 60.00 秒",
		"测试完成！",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTextReporter_SummaryWithoutMisroutes(t *testing.T) {
	var buf bytes.Buffer
	s := Summarize([]Result{{Index: 1, Expected: "health_agent", Actual: "health_agent", Correct: true}})
	NewTextReporter(true).Summary(&buf, s, 1500*time.Millisecond)

	assert.True(t, strings.HasSuffix(buf.String(), "准确率：100.00%\n程序执行耗时: 1.50 秒\n测试完成！\n"))
}

func TestJSONReporter(t *testing.T) {
	report := sampleReport()
	var buf bytes.Buffer
	require.NoError(t, JSONReporter{}.Render(&buf, report))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, report.RunID, decoded["run_id"])
	assert.Equal(t, "handoff", decoded["variant"])
	summary := decoded["summary"].(map[string]any)
	assert.EqualValues(t, 3, summary["total"])
	assert.EqualValues(t, 1, summary["errors"])
}

func TestMarkdownReporter_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MarkdownReporter{}.Render(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "# 多智能体识别准确性测试")
	assert.Contains(t, out, "**33.33%** (1/3)")
	assert.Contains(t, out, "| 2 | 订购5个轴承备件 | maintenance_agent | health_agent | ✗ |")
	assert.Contains(t, out, "| 3 | 生成今天的运营日报 | report_agent | - | 测试失败: api unavailable |")
	assert.Contains(t, out, "| dispatch_agent | 1 | 1 | 100.00% |")
	assert.Contains(t, out, "- 问题2: 预期 maintenance_agent, 实际 health_agent")
}

func TestNewReporter(t *testing.T) {
	r, err := NewReporter("", false)
	require.NoError(t, err)
	assert.IsType(t, &TextReporter{}, r)

	r, err = NewReporter("JSON", false)
	require.NoError(t, err)
	assert.IsType(t, JSONReporter{}, r)

	r, err = NewReporter("markdown", true)
	require.NoError(t, err)
	assert.Equal(t, MarkdownReporter{Styled: false}, r)

	_, err = NewReporter("html", false)
	require.EqualError(t, err, "unsupported report format: html")
}
