package eval

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

var rule = strings.Repeat("=", 60)

// Report 一次完整评测
type Report struct {
	RunID      string    `json:"run_id"`
	Variant    string    `json:"variant"`
	Model      string    `json:"model"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Results    []Result  `json:"results"`
	Summary    Summary   `json:"summary"`
}

// NewReport 汇总结果并生成新的 RunID
func NewReport(variant, model string, startedAt, finishedAt time.Time, results []Result) *Report {
	return &Report{
		RunID:      uuid.NewString(),
		Variant:    variant,
		Model:      model,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Results:    results,
		Summary:    Summarize(results),
	}
}

// Elapsed 评测耗时
func (r *Report) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Reporter 把评测报告写到 w
type Reporter interface {
	Render(w io.Writer, report *Report) error
}

// NewReporter 按格式创建 Reporter
func NewReporter(format string, noColor bool) (Reporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return NewTextReporter(noColor), nil
	case FormatJSON:
		return JSONReporter{}, nil
	case FormatMarkdown:
		return MarkdownReporter{Styled: !noColor}, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// TextReporter 彩色终端输出，逐题打印后输出摘要
type TextReporter struct {
	noColor bool
	pass    lipgloss.Style
	fail    lipgloss.Style
	info    lipgloss.Style
}

func NewTextReporter(noColor bool) *TextReporter {
	return &TextReporter{
		noColor: noColor,
		pass:    lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		fail:    lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		info:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00D4FF")),
	}
}

func (t *TextReporter) paint(style lipgloss.Style, s string) string {
	if t.noColor {
		return s
	}
	return style.Render(s)
}

// Header 打印评测标题
func (t *TextReporter) Header(w io.Writer, variant string, total int) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, t.paint(t.info, "多智能体识别准确性测试"))
	fmt.Fprintln(w, rule)
	if variant != "" {
		fmt.Fprintf(w, "路由策略：%s\n", variant)
	}
	fmt.Fprintf(w, "测试用例数：%d\n", total)
	fmt.Fprintln(w, "开始执行测试...")
	fmt.Fprintln(w)
}

// Result 打印单道题的结果
func (t *TextReporter) Result(w io.Writer, r Result) {
	fmt.Fprintf(w, "问题%d: \"%s\"\n", r.Index, r.Question)
	if r.Error != "" {
		fmt.Fprintf(w, "  %s\n", t.paint(t.fail, "测试失败: "+r.Error))
	} else {
		mark := t.paint(t.pass, "✓")
		if !r.Correct {
			mark = t.paint(t.fail, "✗")
		}
		fmt.Fprintf(w, "  预期：%s | 实际：%s | %s\n", r.Expected, r.Actual, mark)
	}
	fmt.Fprintln(w)
}

// Summary 打印测试摘要、错路由详情与总耗时
func (t *TextReporter) Summary(w io.Writer, s Summary, elapsed time.Duration) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "测试摘要")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "总题数：%d\n", s.Total)
	fmt.Fprintf(w, "正确：%d\n", s.Correct)
	fmt.Fprintf(w, "错误：%d\n", s.Wrong)
	fmt.Fprintf(w, "准确率：%.2f%%\n", s.Accuracy)

	if len(s.Misroutes) > 0 {
		fmt.Fprintln(w, "错误详情：")
		for _, r := range s.Misroutes {
			fmt.Fprintf(w, "- 问题%d: 预期 %s, 实际 %s\n", r.Index, r.Expected, r.Actual)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "程序执行耗时: %.2f 秒\n", elapsed.Seconds())
	fmt.Fprintln(w, "测试完成！")
}

func (t *TextReporter) Render(w io.Writer, report *Report) error {
	t.Header(w, report.Variant, len(report.Results))
	for _, r := range report.Results {
		t.Result(w, r)
	}
	t.Summary(w, report.Summary, report.Elapsed())
	return nil
}

// JSONReporter 输出完整报告
type JSONReporter struct{}

func (JSONReporter) Render(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}

// MarkdownReporter 输出 markdown 表格，Styled 时用 glamour 渲染到终端
type MarkdownReporter struct {
	Styled bool
}

func (m MarkdownReporter) Render(w io.Writer, report *Report) error {
	md := BuildMarkdown(report)
	if !m.Styled {
		_, err := io.WriteString(w, md)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// BuildMarkdown 生成 markdown 格式的评测报告
func BuildMarkdown(report *Report) string {
	var b strings.Builder
	s := report.Summary

	b.WriteString("# 多智能体识别准确性测试\n\n")
	if report.Variant != "" {
		fmt.Fprintf(&b, "- 路由策略：`%s`\n", report.Variant)
	}
	if report.Model != "" {
		fmt.Fprintf(&b, "- 模型：`%s`\n", report.Model)
	}
	if report.RunID != "" {
		fmt.Fprintf(&b, "- Run ID：`%s`\n", report.RunID)
	}
	fmt.Fprintf(&b, "- 准确率：**%.2f%%** (%d/%d)\n\n", s.Accuracy, s.Correct, s.Total)

	b.WriteString("| # | 问题 | 预期 | 实际 | 结果 |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, r := range report.Results {
		actual, mark := r.Actual, "✓"
		switch {
		case r.Error != "":
			actual, mark = "-", "测试失败: "+escapeCell(r.Error)
		case !r.Correct:
			mark = "✗"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n", r.Index, escapeCell(r.Question), r.Expected, actual, mark)
	}

	if len(s.PerAgent) > 0 {
		b.WriteString("\n## 各智能体准确率\n\n")
		b.WriteString("| 智能体 | 题数 | 正确 | 准确率 |\n")
		b.WriteString("|---|---|---|---|\n")
		names := make([]string, 0, len(s.PerAgent))
		for name := range s.PerAgent {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			st := s.PerAgent[name]
			fmt.Fprintf(&b, "| %s | %d | %d | %.2f%% |\n", name, st.Total, st.Correct, st.Accuracy)
		}
	}

	if len(s.Misroutes) > 0 {
		b.WriteString("\n## 错误详情\n\n")
		for _, r := range s.Misroutes {
			fmt.Fprintf(&b, "- 问题%d: 预期 %s, 实际 %s\n", r.Index, r.Expected, r.Actual)
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
