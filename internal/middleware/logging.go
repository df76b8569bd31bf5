package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-kratos/blades"
)

// AgentLogging 记录 Agent 的每次运行、工具调用与 token 用量
func AgentLogging(agentName string) blades.Middleware {
	return func(next blades.Handler) blades.Handler {
		return blades.HandleFunc(func(ctx context.Context, inv *blades.Invocation) blades.Generator[*blades.Message, error] {
			return func(yield func(*blades.Message, error) bool) {
				start := time.Now()
				slog.Debug("agent.run.start",
					"agent", agentName,
					"invocation_id", inv.ID,
					"history", len(inv.History),
				)

				var last *blades.Message
				for msg, err := range next.Handle(ctx, inv) {
					if err != nil {
						slog.Error("agent.run.failed",
							"agent", agentName,
							"invocation_id", inv.ID,
							"duration", time.Since(start),
							"error", err,
						)
						yield(nil, err)
						return
					}
					if msg != nil {
						logToolParts(agentName, msg)
						last = msg
					}
					if !yield(msg, nil) {
						return
					}
				}

				attrs := []any{
					"agent", agentName,
					"invocation_id", inv.ID,
					"duration", time.Since(start),
				}
				if last != nil {
					attrs = append(attrs,
						"input_tokens", last.TokenUsage.InputTokens,
						"output_tokens", last.TokenUsage.OutputTokens,
					)
				}
				slog.Info("agent.run.complete", attrs...)
			}
		})
	}
}

func logToolParts(agentName string, msg *blades.Message) {
	if msg.Role != blades.RoleTool {
		return
	}
	for _, part := range msg.Parts {
		tp, ok := part.(blades.ToolPart)
		if !ok {
			continue
		}
		slog.Debug("agent.tool.call",
			"agent", agentName,
			"tool", tp.Name,
			"request", tp.Request,
			"response", tp.Response,
		)
	}
}
