package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-kratos/blades"
)

const (
	markdownHeader       = "<!-- air-station-session:v1 -->"
	beginSessionJSONDump = "<!-- BEGIN_STATION_SESSION_JSON -->"
	endSessionJSONDump   = "<!-- END_STATION_SESSION_JSON -->"
)

// SessionDump 会话导出内容，嵌入在 markdown 中
type SessionDump struct {
	SessionID string         `json:"session_id"`
	State     map[string]any `json:"state,omitempty"`
	Messages  []DumpMessage  `json:"messages"`
}

type DumpMessage struct {
	Role   string `json:"role"`
	Author string `json:"author,omitempty"`
	Text   string `json:"text"`
}

// BuildDump 导出会话中的用户与助手消息以及 State
func BuildDump(session blades.Session) (SessionDump, error) {
	if session == nil {
		return SessionDump{}, fmt.Errorf("session is nil")
	}

	history := session.History()
	messages := make([]DumpMessage, 0, len(history))
	for _, m := range history {
		if m == nil {
			continue
		}
		switch m.Role {
		case blades.RoleUser, blades.RoleAssistant:
			messages = append(messages, DumpMessage{
				Role:   string(m.Role),
				Author: m.Author,
				Text:   m.Text(),
			})
		}
	}

	return SessionDump{
		SessionID: session.ID(),
		State:     session.State(),
		Messages:  messages,
	}, nil
}

// EncodeMarkdown 生成可读的对话记录，并在末尾嵌入 JSON 以便重新加载
func EncodeMarkdown(dump SessionDump, title string) ([]byte, error) {
	body, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(markdownHeader)
	buf.WriteString("\n\n")

	if t := strings.TrimSpace(title); t != "" {
		fmt.Fprintf(&buf, "# %s\n\n", t)
	}

	if len(dump.Messages) > 0 {
		buf.WriteString("## 对话记录\n\n")
		for _, m := range dump.Messages {
			buf.WriteString("### ")
			buf.WriteString(speaker(m))
			buf.WriteString("\n\n```text\n")
			buf.WriteString(m.Text)
			buf.WriteString("\n```\n\n")
		}
	}

	buf.WriteString(beginSessionJSONDump)
	buf.WriteString("\n")
	buf.Write(body)
	buf.WriteString("\n")
	buf.WriteString(endSessionJSONDump)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

func speaker(m DumpMessage) string {
	switch m.Role {
	case string(blades.RoleUser):
		return "User"
	case string(blades.RoleAssistant):
		if a := strings.TrimSpace(m.Author); a != "" {
			return "Assistant - [" + a + "]"
		}
		return "Assistant"
	default:
		if m.Role == "" {
			return "unknown"
		}
		return m.Role
	}
}

// DecodeMarkdown 从 markdown 中取出嵌入的会话 JSON
func DecodeMarkdown(markdown []byte) (SessionDump, error) {
	content := string(markdown)

	begin := strings.Index(content, beginSessionJSONDump)
	if begin < 0 {
		return SessionDump{}, fmt.Errorf("missing json dump begin marker")
	}
	begin += len(beginSessionJSONDump)

	end := strings.Index(content, endSessionJSONDump)
	if end < 0 || end < begin {
		return SessionDump{}, fmt.Errorf("missing json dump end marker")
	}

	var dump SessionDump
	if err := json.Unmarshal([]byte(strings.TrimSpace(content[begin:end])), &dump); err != nil {
		return SessionDump{}, fmt.Errorf("decode session json: %w", err)
	}
	return dump, nil
}
