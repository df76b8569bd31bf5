package middleware

import (
	"context"
	"time"

	"github.com/go-kratos/blades"
)

// InvocationObserver 接收 Agent 运行耗时与结果
type InvocationObserver interface {
	ObserveAgentInvocation(agent string, d time.Duration, err error)
}

// AgentMetrics 统计 Agent 运行次数与耗时，observer 为 nil 时直接透传
func AgentMetrics(agentName string, observer InvocationObserver) blades.Middleware {
	return func(next blades.Handler) blades.Handler {
		if observer == nil {
			return next
		}
		return blades.HandleFunc(func(ctx context.Context, inv *blades.Invocation) blades.Generator[*blades.Message, error] {
			return func(yield func(*blades.Message, error) bool) {
				start := time.Now()
				var runErr error
				defer func() {
					observer.ObserveAgentInvocation(agentName, time.Since(start), runErr)
				}()

				for msg, err := range next.Handle(ctx, inv) {
					if err != nil {
						runErr = err
					}
					if !yield(msg, err) {
						return
					}
				}
			}
		})
	}
}
