package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var capabilities = []string{
	"设备调度 - 启停空压机、调整负荷、用气需求",
	"故障维修 - 故障诊断、维修指南、备件订购",
	"能耗分析 - 能耗统计、能效对比、节能报告",
	"设备健康 - 健康评分、预测维护、实时状态",
	"运营报告 - 日报月报、优化建议",
	"设备巡检 - 视觉巡检、异常检测",
}

var banner = strings.Repeat("=", 60)

// printer 负责终端输出与着色
type printer struct {
	out     io.Writer
	noColor bool

	assistant lipgloss.Style
	agent     lipgloss.Style
	errStyle  lipgloss.Style
	muted     lipgloss.Style
}

func newPrinter(out io.Writer, noColor bool) printer {
	return printer{
		out:       out,
		noColor:   noColor,
		assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
		agent:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		errStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}
}

func (p printer) paint(style lipgloss.Style, s string) string {
	if p.noColor {
		return s
	}
	return style.Render(s)
}

// Banner 启动时的模型信息与功能列表
func (p printer) Banner(model, strategy string) {
	fmt.Fprintln(p.out, banner)
	fmt.Fprintln(p.out, "模型信息：")
	fmt.Fprintf(p.out, "model=%s, strategy=%s\n", model, strategy)
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "可用功能：")
	for i, c := range capabilities {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, c)
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, banner)
	fmt.Fprintln(p.out)
}

// Reply 输出形如 "Assistant - [agent]: text"
func (p printer) Reply(agent, text string) {
	fmt.Fprintf(p.out, "%s%s: %s\n\n",
		p.paint(p.assistant, "Assistant - "),
		p.paint(p.agent, "["+agent+"]"),
		text,
	)
}

func (p printer) Error(err error) {
	fmt.Fprintln(p.out, p.paint(p.errStyle, fmt.Sprintf("[Error] %v", err)))
	fmt.Fprintln(p.out)
}

func (p printer) Info(format string, args ...any) {
	fmt.Fprintln(p.out, p.paint(p.muted, fmt.Sprintf(format, args...)))
}

func (p printer) Goodbye() {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "感谢使用空压站多智能体系统，再见！")
}

func (p printer) Help() {
	fmt.Fprintln(p.out, `
可用命令：
  help            显示帮助
  save [path]     把当前会话保存为 markdown
  load <path>     从 markdown 恢复会话
  quit, exit, 退出, q  退出

快捷键：
  Ctrl+C / Ctrl+D 退出
  ↑/↓             浏览历史输入`)
}
