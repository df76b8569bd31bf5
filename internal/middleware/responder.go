package middleware

import (
	"context"

	"github.com/go-kratos/blades"

	"github.com/airstation/internal/consts"
)

// RecordResponder 在 Agent 开始运行时把自己登记为当前作答者，并追加到移交路径
// 最后一个开始运行的 Agent 即最终作答者
func RecordResponder(agentName string) blades.Middleware {
	return func(next blades.Handler) blades.Handler {
		return blades.HandleFunc(func(ctx context.Context, inv *blades.Invocation) blades.Generator[*blades.Message, error] {
			if session, ok := blades.FromSessionContext(ctx); ok {
				MarkResponder(session, agentName)
			}
			return next.Handle(ctx, inv)
		})
	}
}

// MarkResponder 更新会话中的作答者与移交路径
func MarkResponder(session blades.Session, agentName string) {
	path := HandoffPath(session)
	session.SetState(consts.StateHandoffPath, append(path, agentName))
	session.SetState(consts.StateActiveAgent, agentName)
}

// ResetResponder 清空上一轮留下的作答者与移交路径
func ResetResponder(session blades.Session) {
	session.SetState(consts.StateActiveAgent, "")
	session.SetState(consts.StateHandoffPath, []string{})
}

// ActiveAgent 读取会话中记录的作答者
func ActiveAgent(session blades.Session) string {
	name, _ := session.State()[consts.StateActiveAgent].(string)
	return name
}

// HandoffPath 读取会话中记录的移交路径
func HandoffPath(session blades.Session) []string {
	switch v := session.State()[consts.StateHandoffPath].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		// 从 JSON 恢复的状态
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
