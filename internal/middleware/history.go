package middleware

import (
	"context"

	"github.com/go-kratos/blades"
)

// LoadSessionHistory 用会话中的完整历史替换 invocation 的历史
// 被移交的子 Agent 否则只能看到当前这一条消息
func LoadSessionHistory() blades.Middleware {
	return func(next blades.Handler) blades.Handler {
		return blades.HandleFunc(func(ctx context.Context, inv *blades.Invocation) blades.Generator[*blades.Message, error] {
			session, ok := blades.FromSessionContext(ctx)
			if !ok {
				return next.Handle(ctx, inv)
			}

			sessionHistory := session.History()
			if len(sessionHistory) > 0 {
				// 复制一份，避免 Agent 追加消息时改写会话底层数组
				inv.History = make([]*blades.Message, len(sessionHistory))
				copy(inv.History, sessionHistory)
			}

			return next.Handle(ctx, inv)
		})
	}
}
