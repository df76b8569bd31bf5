// Package llmtest 提供按脚本回复的模型，用于在不访问网络的情况下运行完整的 Agent 图
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-kratos/blades"
)

// Request 模型收到的一次请求的快照
type Request struct {
	Tools       []string
	Instruction string
}

// Reply 生成一条回复，每次调用都要返回新的消息
type Reply func() *blades.Message

// Text 直接作答
func Text(text string) Reply {
	return func() *blades.Message {
		msg := blades.AssistantMessage(text)
		msg.Status = blades.StatusCompleted
		return msg
	}
}

// ToolCall 调用一个工具，arguments 为 JSON
func ToolCall(name, arguments string) Reply {
	return func() *blades.Message {
		return &blades.Message{
			ID:     blades.NewMessageID(),
			Role:   blades.RoleTool,
			Status: blades.StatusCompleted,
			Parts: []blades.Part{blades.ToolPart{
				ID:      "call-" + name,
				Name:    name,
				Request: arguments,
			}},
		}
	}
}

// ScriptedModel 按顺序返回预设回复，回复用完后重复最后一条
type ScriptedModel struct {
	name    string
	replies []Reply

	mu       sync.Mutex
	requests []Request
}

func NewScriptedModel(name string, replies ...Reply) *ScriptedModel {
	return &ScriptedModel{name: name, replies: replies}
}

func (m *ScriptedModel) Name() string { return m.name }

func (m *ScriptedModel) Generate(_ context.Context, req *blades.ModelRequest) (*blades.ModelResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.replies) == 0 {
		return nil, fmt.Errorf("model %s has no scripted replies", m.name)
	}

	snapshot := Request{}
	for _, t := range req.Tools {
		snapshot.Tools = append(snapshot.Tools, t.Name())
	}
	if req.Instruction != nil {
		snapshot.Instruction = req.Instruction.Text()
	}
	idx := min(len(m.requests), len(m.replies)-1)
	m.requests = append(m.requests, snapshot)
	return &blades.ModelResponse{Message: m.replies[idx]()}, nil
}

func (m *ScriptedModel) NewStreaming(ctx context.Context, req *blades.ModelRequest) blades.Generator[*blades.ModelResponse, error] {
	return func(yield func(*blades.ModelResponse, error) bool) {
		yield(m.Generate(ctx, req))
	}
}

// Requests 已收到的请求
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}
