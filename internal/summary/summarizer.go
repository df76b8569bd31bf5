package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-kratos/blades"
)

// Summarizer 把一段对话历史压缩成可完整替换旧摘要的中文摘要
type Summarizer interface {
	// previousSummary 可以为空；messages 为本次需要压缩的历史片段，不包含旧摘要
	Summarize(ctx context.Context, previousSummary string, messages []*blades.Message) (newSummary string, usage blades.TokenUsage, err error)
}

type Config struct {
	Model              blades.ModelProvider
	MaxOutputTokens    int
	MaxSummaryChars    int
	IncludeToolDetails bool
}

type modelSummarizer struct {
	model              blades.ModelProvider
	maxOutputTokens    int
	maxSummaryChars    int
	includeToolDetails bool
}

func NewSummarizer(cfg Config) (Summarizer, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("summary model is required")
	}
	return &modelSummarizer{
		model:              cfg.Model,
		maxOutputTokens:    cfg.MaxOutputTokens,
		maxSummaryChars:    cfg.MaxSummaryChars,
		includeToolDetails: cfg.IncludeToolDetails,
	}, nil
}

func (s *modelSummarizer) Summarize(ctx context.Context, previousSummary string, messages []*blades.Message) (string, blades.TokenUsage, error) {
	instruction := blades.SystemMessage(BuildInstruction(s.maxOutputTokens, s.maxSummaryChars))
	user := blades.UserMessage(BuildInput(previousSummary, messages, s.includeToolDetails))

	slog.Info("summary.start", "previous_len", len(previousSummary), "delta_count", len(messages))

	resp, err := s.model.Generate(ctx, &blades.ModelRequest{
		Instruction: instruction,
		Messages:    []*blades.Message{user},
	})
	if err != nil {
		slog.Error("summary.failed", "error", err)
		return "", blades.TokenUsage{}, err
	}
	if resp == nil || resp.Message == nil {
		err := fmt.Errorf("summary model returned empty response")
		slog.Error("summary.failed", "error", err)
		return "", blades.TokenUsage{}, err
	}
	slog.Info("summary.complete",
		"input_tokens", resp.Message.TokenUsage.InputTokens,
		"output_tokens", resp.Message.TokenUsage.OutputTokens,
	)
	return strings.TrimSpace(resp.Message.Text()), resp.Message.TokenUsage, nil
}

// BuildInstruction 摘要模型的系统提示词
func BuildInstruction(maxOutputTokens, maxSummaryChars int) string {
	var b strings.Builder
	b.WriteString("你是空压站对话上下文压缩器。请把对话历史压缩成一份可完整替换旧摘要的中文摘要，供后续对话继续使用。\n")
	b.WriteString("\n")
	b.WriteString("要求：\n")
	b.WriteString("- 只输出摘要正文，不要输出前后缀说明。\n")
	b.WriteString("- 你会收到 previous_summary（可能为空）与 delta_transcript（本次新增历史），新摘要必须合并两者，以 delta_transcript 为准修正过期信息。\n")
	b.WriteString("- 保留涉及的设备编号、故障现象、已执行的操作（启停、负荷调整、备件订购、巡检记录）以及负责处理的智能体。\n")
	b.WriteString("- 删除寒暄与重复内容。\n")
	b.WriteString("- 输出结构：\n")
	b.WriteString("  1) 设备与运行状况\n")
	b.WriteString("  2) 已完成的操作\n")
	b.WriteString("  3) 用户关注点\n")
	b.WriteString("  4) 待跟进事项\n")
	if maxSummaryChars > 0 {
		b.WriteString(fmt.Sprintf("- 长度不超过 %d 个中文字符。\n", maxSummaryChars))
	}
	if maxOutputTokens > 0 {
		b.WriteString(fmt.Sprintf("- 输出不超过 %d token。\n", maxOutputTokens))
	}
	return b.String()
}

// BuildInput 组装摘要模型的用户输入
func BuildInput(previousSummary string, messages []*blades.Message, includeToolDetails bool) string {
	var b strings.Builder
	b.WriteString("previous_summary:\n")
	if strings.TrimSpace(previousSummary) == "" {
		b.WriteString("(empty)\n")
	} else {
		b.WriteString(previousSummary)
		if !strings.HasSuffix(previousSummary, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString("delta_transcript:\n")
	b.WriteString(RenderTranscript(messages, includeToolDetails))
	return b.String()
}

// RenderTranscript 把消息渲染成纯文本对话记录，助手消息带上作答的智能体
func RenderTranscript(messages []*blades.Message, includeToolDetails bool) string {
	var b strings.Builder
	for _, m := range messages {
		if m == nil {
			continue
		}
		txt := strings.TrimSpace(m.Text())
		switch m.Role {
		case blades.RoleUser:
			fmt.Fprintf(&b, "User: %s\n", txt)
		case blades.RoleAssistant:
			if m.Author != "" {
				fmt.Fprintf(&b, "Assistant[%s]: %s\n", m.Author, txt)
			} else {
				fmt.Fprintf(&b, "Assistant: %s\n", txt)
			}
		case blades.RoleSystem:
			if txt != "" {
				fmt.Fprintf(&b, "System: %s\n", txt)
			}
		case blades.RoleTool:
			if includeToolDetails {
				renderToolMessage(&b, m, txt)
			}
		}
	}
	return b.String()
}

func renderToolMessage(b *strings.Builder, m *blades.Message, txt string) {
	if txt != "" {
		fmt.Fprintf(b, "Tool: %s\n", txt)
		return
	}
	for _, part := range m.Parts {
		tp, ok := part.(blades.ToolPart)
		if !ok {
			continue
		}
		name := tp.Name
		if name == "" {
			name = "tool_call"
		}
		if resp := strings.TrimSpace(tp.Response); resp != "" {
			fmt.Fprintf(b, "Tool: %s => %s\n", name, resp)
		} else {
			fmt.Fprintf(b, "Tool: %s\n", name)
		}
	}
}
