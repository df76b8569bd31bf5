package agent

import (
	"slices"

	"github.com/go-kratos/blades"
)

// nextInvocation 交给下一个 Agent 运行的 invocation
// 沿用 ID、会话与用户消息；blades 会把 Agent 的工具和系统提示追加到 invocation 上，
// 因此 Tools 与 Instruction 必须留空，由目标 Agent 自己准备
func nextInvocation(inv *blades.Invocation) *blades.Invocation {
	return &blades.Invocation{
		ID:         inv.ID,
		Session:    inv.Session,
		Resumable:  inv.Resumable,
		Streamable: inv.Streamable,
		Message:    inv.Message,
		History:    slices.Clone(inv.History),
	}
}
