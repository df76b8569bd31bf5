package summary

import (
	"strings"
	"testing"

	"github.com/go-kratos/blades"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSummarizer_RequiresModel(t *testing.T) {
	_, err := NewSummarizer(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary model is required")
}

func TestBuildInstruction(t *testing.T) {
	got := BuildInstruction(256, 300)
	assert.Contains(t, got, "不超过 300 个中文字符")
	assert.Contains(t, got, "不超过 256 token")

	plain := BuildInstruction(0, 0)
	assert.NotContains(t, plain, "token。")
}

func TestBuildInput_EmptyPrevious(t *testing.T) {
	got := BuildInput("  ", []*blades.Message{blades.UserMessage("停止3号空压机运行")}, false)
	assert.True(t, strings.HasPrefix(got, "previous_summary:\n(empty)\n"))
	assert.Contains(t, got, "delta_transcript:\nUser: 停止3号空压机运行\n")
}

func TestRenderTranscript(t *testing.T) {
	reply := blades.AssistantMessage("空压机 3号 已停止")
	reply.Author = "dispatch_agent"
	toolMsg := &blades.Message{
		Role: blades.RoleTool,
		Parts: []blades.Part{
			blades.ToolPart{ID: "t1", Name: "stop_compressor", Request: `{"compressor_id":"3号"}`, Response: `{"success":true}`},
		},
	}
	msgs := []*blades.Message{
		blades.UserMessage("停止3号空压机运行"),
		toolMsg,
		reply,
		blades.SystemMessage(""),
		nil,
	}

	withoutTools := RenderTranscript(msgs, false)
	assert.Equal(t, "User: 停止3号空压机运行\nAssistant[dispatch_agent]: 空压机 3号 已停止\n", withoutTools)

	withTools := RenderTranscript(msgs, true)
	assert.Contains(t, withTools, `Tool: stop_compressor => {"success":true}`)
}
