package session

import (
	"context"
	"time"

	"github.com/go-kratos/blades"
)

// StoredMessage 持久化的一条对话消息，只保存用户与助手的文本
type StoredMessage struct {
	Role      string
	Author    string
	Text      string
	CreatedAt time.Time
}

// Store 会话持久化接口
type Store interface {
	AppendMessage(ctx context.Context, sessionID string, msg StoredMessage) error
	ReplaceMessages(ctx context.Context, sessionID string, msgs []StoredMessage) error
	Messages(ctx context.Context, sessionID string) ([]StoredMessage, error)
	SaveState(ctx context.Context, sessionID string, state map[string]any) error
	LoadState(ctx context.Context, sessionID string) (map[string]any, error)
	Close() error
}

// toStored 转换为可持久化的消息，system/tool 消息返回 false
func toStored(m *blades.Message) (StoredMessage, bool) {
	if m == nil {
		return StoredMessage{}, false
	}
	switch m.Role {
	case blades.RoleUser, blades.RoleAssistant:
		return StoredMessage{
			Role:      string(m.Role),
			Author:    m.Author,
			Text:      m.Text(),
			CreatedAt: time.Now().UTC(),
		}, true
	default:
		return StoredMessage{}, false
	}
}

// fromStored 还原为 blades 消息，未知角色返回 nil
func fromStored(s StoredMessage) *blades.Message {
	var msg *blades.Message
	switch s.Role {
	case string(blades.RoleUser):
		msg = blades.UserMessage(s.Text)
	case string(blades.RoleAssistant):
		msg = blades.AssistantMessage(s.Text)
	default:
		return nil
	}
	msg.Author = s.Author
	msg.Status = blades.StatusCompleted
	return msg
}
