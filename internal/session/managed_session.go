package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-kratos/blades"
	"github.com/google/uuid"

	"github.com/airstation/config"
	"github.com/airstation/internal/summary"
)

// 会话摘要相关的 State 键
const (
	StateKeyConversationSummary = "conversation_summary"
	StateKeySummaryUpdatedAt    = "conversation_summary_updated_at"
	StateKeyLastPromptTokens    = "last_prompt_tokens"
	StateKeyLastTotalTokens     = "last_total_tokens"
)

// ManagedSession 带增量摘要与裁剪的会话
//
// history 只保存真实对话轮次，摘要放在 State 中，由 History() 注入为 system 消息。
// 只有 assistant 完成消息追加后才评估是否压缩。
// 配置了 Store 时，消息与状态同步写入持久化存储。
type ManagedSession struct {
	id string

	cfg        config.ConversationConfig
	summarizer summary.Summarizer
	store      Store

	mu      sync.RWMutex
	state   blades.State
	history []*blades.Message
}

type ManagedSessionConfig struct {
	// ID 为空时自动生成
	ID           string
	Conversation config.ConversationConfig
	// Summarizer 为空时不做压缩
	Summarizer summary.Summarizer
	Store      Store
}

func NewManagedSession(cfg ManagedSessionConfig) *ManagedSession {
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &ManagedSession{
		id:         id,
		cfg:        cfg.Conversation,
		summarizer: cfg.Summarizer,
		store:      cfg.Store,
		state:      make(blades.State),
	}
}

// OpenManagedSession 从 Store 恢复已有会话，不存在时得到一个空会话
func OpenManagedSession(ctx context.Context, cfg ManagedSessionConfig) (*ManagedSession, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	s := NewManagedSession(cfg)
	if s.store == nil {
		return s, nil
	}

	state, err := s.store.LoadState(ctx, s.id)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Messages(ctx, s.id)
	if err != nil {
		return nil, err
	}

	for k, v := range state {
		s.state[k] = v
	}
	for _, m := range stored {
		if msg := fromStored(m); msg != nil {
			s.history = append(s.history, msg)
		}
	}
	slog.Info("session.restore", "session_id", s.id, "messages", len(s.history))
	return s, nil
}

func (s *ManagedSession) ID() string {
	return s.id
}

func (s *ManagedSession) State() blades.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

func (s *ManagedSession) SetState(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[key] = value
}

func (s *ManagedSession) History() []*blades.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	base := make([]*blades.Message, 0, len(s.history)+1)
	if summaryText, ok := s.state[StateKeyConversationSummary].(string); ok && summaryText != "" {
		base = append(base, blades.SystemMessage(summaryText))
	}
	base = append(base, s.history...)
	return base
}

func (s *ManagedSession) Append(ctx context.Context, message *blades.Message) error {
	if message == nil {
		return nil
	}

	s.mu.Lock()
	s.history = append(s.history, message)
	s.mu.Unlock()

	if err := s.persist(ctx, message); err != nil {
		return err
	}

	if message.Role != blades.RoleAssistant || message.Status != blades.StatusCompleted {
		return nil
	}
	return s.maybeCompress(ctx, message)
}

// Flush 把当前 State 写入 Store
func (s *ManagedSession) Flush(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.SaveState(ctx, s.id, s.State())
}

func (s *ManagedSession) persist(ctx context.Context, message *blades.Message) error {
	if s.store == nil {
		return nil
	}
	if stored, ok := toStored(message); ok {
		if err := s.store.AppendMessage(ctx, s.id, stored); err != nil {
			return err
		}
	}
	return s.Flush(ctx)
}

func (s *ManagedSession) maybeCompress(ctx context.Context, message *blades.Message) error {
	s.mu.Lock()
	// 记录最近一次 token 用量，作为下一轮判断依据
	s.state[StateKeyLastPromptTokens] = message.TokenUsage.InputTokens
	s.state[StateKeyLastTotalTokens] = message.TokenUsage.TotalTokens

	if s.summarizer == nil {
		s.mu.Unlock()
		return nil
	}

	threshold := int64(float64(s.cfg.ContextWindowTokens) * s.cfg.CompressionThreshold)
	needByTokens := threshold > 0 && message.TokenUsage.InputTokens >= threshold
	needByCount := s.cfg.MaxInContextMessages > 0 && len(s.history) > s.cfg.MaxInContextMessages
	if !needByTokens && !needByCount {
		s.mu.Unlock()
		return nil
	}

	cutoff := len(s.history) - s.cfg.RetainRecentMessages
	if cutoff <= 0 {
		s.mu.Unlock()
		return nil
	}
	delta := make([]*blades.Message, cutoff)
	copy(delta, s.history[:cutoff])
	tail := make([]*blades.Message, len(s.history)-cutoff)
	copy(tail, s.history[cutoff:])

	previousSummary, _ := s.state[StateKeyConversationSummary].(string)
	s.mu.Unlock()

	newSummary, _, err := s.summarizer.Summarize(ctx, previousSummary, delta)
	if err != nil {
		return fmt.Errorf("summarize session %s: %w", s.id, err)
	}

	s.mu.Lock()
	s.state[StateKeyConversationSummary] = newSummary
	s.state[StateKeySummaryUpdatedAt] = time.Now().UTC().Format(time.RFC3339Nano)
	s.history = tail
	s.mu.Unlock()

	slog.Info("session.compressed", "session_id", s.id, "summarized", len(delta), "retained", len(tail))

	if s.store == nil {
		return nil
	}
	stored := make([]StoredMessage, 0, len(tail))
	for _, m := range tail {
		if sm, ok := toStored(m); ok {
			stored = append(stored, sm)
		}
	}
	if err := s.store.ReplaceMessages(ctx, s.id, stored); err != nil {
		return err
	}
	return s.Flush(ctx)
}
