package repl

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileTranscriptWriter_WriteMessages(t *testing.T) {
	dir := t.TempDir()

	tw, err := NewFileTranscriptWriterWithDir("s-1", dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "s-1.md"), tw.Path())

	require.NoError(t, tw.WriteUserMessage("1号空压机故障了"))
	require.NoError(t, tw.WriteAssistantMessage("maintenance_agent", "已诊断：轴承磨损"))
	require.NoError(t, tw.Close())

	content, err := os.ReadFile(tw.Path())
	require.NoError(t, err)
	s := string(content)
	require.Contains(t, s, "# 空压站对话记录")
	require.Contains(t, s, "### User\n\n1号空压机故障了")
	require.Contains(t, s, "### Assistant - [maintenance_agent]\n\n已诊断：轴承磨损")
	require.Equal(t, 1, strings.Count(s, "# 空压站对话记录"))
}

func TestFileTranscriptWriter_EmptySessionID(t *testing.T) {
	_, err := NewFileTranscriptWriterWithDir("", t.TempDir())
	require.ErrorContains(t, err, "session ID is required")
}

func TestFileTranscriptWriter_WriteAfterClose(t *testing.T) {
	tw, err := NewFileTranscriptWriterWithDir("s-2", t.TempDir())
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, tw.Close())

	require.ErrorContains(t, tw.WriteUserMessage("hi"), "transcript closed")
}

func TestDefaultTranscriptDir(t *testing.T) {
	dir, err := DefaultTranscriptDir()
	require.NoError(t, err)

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(homeDir, ".air-station", "sessions"), dir)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  command
	}{
		{"", command{kind: cmdEmpty}},
		{"   ", command{kind: cmdEmpty}},
		{"quit", command{kind: cmdExit}},
		{"EXIT", command{kind: cmdExit}},
		{"退出", command{kind: cmdExit}},
		{"q", command{kind: cmdExit}},
		{"help", command{kind: cmdHelp}},
		{"save", command{kind: cmdSave}},
		{"save  out/a.md ", command{kind: cmdSave, arg: "out/a.md"}},
		{"load b.md", command{kind: cmdLoad, arg: "b.md"}},
		{"  查看今天的能耗  ", command{kind: cmdChat, arg: "查看今天的能耗"}},
		{"saved energy report", command{kind: cmdChat, arg: "saved energy report"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.want, parseCommand(tt.input))
		})
	}
}

func TestPrinter_NoColor(t *testing.T) {
	var buf bytes.Buffer
	p := newPrinter(&buf, true)

	p.Reply("energy_analysis_agent", "本月能耗 12000 kWh")
	p.Error(errors.New("boom"))
	p.Banner("openai/gpt-4o-mini", "handoff")

	out := buf.String()
	require.Contains(t, out, "Assistant - [energy_analysis_agent]: 本月能耗 12000 kWh\n")
	require.Contains(t, out, "[Error] boom")
	require.Contains(t, out, "model=openai/gpt-4o-mini, strategy=handoff")
	for i, c := range capabilities {
		require.Contains(t, out, fmt.Sprintf("  %d. %s", i+1, c))
	}
}
