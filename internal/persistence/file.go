package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kratos/blades"
)

// SaveResult 保存结果
type SaveResult struct {
	Path         string
	MessageCount int
}

// LoadResult 加载结果
type LoadResult struct {
	MessageCount int
	HasState     bool
}

// DefaultPath 未指定路径时的保存位置
func DefaultPath(session blades.Session) string {
	return filepath.Join("sessions", session.ID()+".md")
}

// SaveSession 把会话写成 markdown 文件
func SaveSession(session blades.Session, path, title string) (SaveResult, error) {
	dump, err := BuildDump(session)
	if err != nil {
		return SaveResult{}, err
	}
	content, err := EncodeMarkdown(dump, title)
	if err != nil {
		return SaveResult{}, err
	}

	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath(session)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return SaveResult{}, fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return SaveResult{}, fmt.Errorf("write session file %s: %w", path, err)
	}
	return SaveResult{Path: path, MessageCount: len(dump.Messages)}, nil
}

// LoadSession 读取 markdown 文件，把其中的 State 与消息追加到 session
func LoadSession(ctx context.Context, session blades.Session, path string) (LoadResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return LoadResult{}, fmt.Errorf("path is required")
	}
	if session == nil {
		return LoadResult{}, fmt.Errorf("session is nil")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("read session file %s: %w", path, err)
	}
	dump, err := DecodeMarkdown(b)
	if err != nil {
		return LoadResult{}, err
	}

	for k, v := range dump.State {
		session.SetState(k, v)
	}

	loaded := 0
	for _, m := range dump.Messages {
		var msg *blades.Message
		switch strings.TrimSpace(m.Role) {
		case string(blades.RoleUser):
			msg = blades.UserMessage(m.Text)
		case string(blades.RoleAssistant):
			msg = blades.AssistantMessage(m.Text)
		default:
			continue
		}
		msg.Author = m.Author
		msg.Status = blades.StatusCompleted
		if err := session.Append(ctx, msg); err != nil {
			return LoadResult{}, err
		}
		loaded++
	}

	return LoadResult{MessageCount: loaded, HasState: len(dump.State) > 0}, nil
}
