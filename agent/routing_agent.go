package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/go-kratos/blades"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/airstation/internal/consts"
)

const actionHandoffToAgent = "handoff_to_agent"

// handoffTool 主调度唯一的工具，agentName 限定为已启用的专业 Agent
type handoffTool struct {
	targets []string
}

func newHandoffTool(targets []string) *handoffTool {
	return &handoffTool{targets: slices.Clone(targets)}
}

func (h *handoffTool) Name() string { return actionHandoffToAgent }

func (h *handoffTool) Description() string {
	return "把用户问题移交给最合适的专业智能体处理。可选目标：" + strings.Join(h.targets, ", ")
}

func (h *handoffTool) InputSchema() *jsonschema.Schema {
	name := &jsonschema.Schema{
		Type:        "string",
		Description: "目标智能体名称",
	}
	for _, t := range h.targets {
		name.Enum = append(name.Enum, t)
	}
	return &jsonschema.Schema{
		Type:       "object",
		Required:   []string{"agentName"},
		Properties: map[string]*jsonschema.Schema{"agentName": name},
	}
}

func (h *handoffTool) OutputSchema() *jsonschema.Schema { return nil }

func (h *handoffTool) Handle(ctx context.Context, input string) (string, error) {
	var args struct {
		AgentName string `json:"agentName"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("decode handoff args: %w", err)
	}
	target := strings.TrimSpace(args.AgentName)
	if target == "" {
		return "", fmt.Errorf("agentName must be a non-empty string")
	}
	toolCtx, ok := blades.FromToolContext(ctx)
	if !ok {
		return "", fmt.Errorf("tool context not found in context")
	}
	toolCtx.SetAction(actionHandoffToAgent, target)
	return "已移交给 " + target, nil
}

// routingAgent 先运行主调度，出现移交动作后以相同的 invocation ID 与会话运行目标 Agent
// 目标 Agent 产出的消息没有 Author 时补上目标名称
type routingAgent struct {
	blades.Agent
	targets map[string]blades.Agent
}

func newRoutingAgent(root blades.Agent, subAgents []blades.Agent) *routingAgent {
	targets := make(map[string]blades.Agent, len(subAgents))
	for _, sub := range subAgents {
		targets[sub.Name()] = sub
	}
	return &routingAgent{Agent: root, targets: targets}
}

// pickHandoff 返回主调度输出中的移交目标，没有移交时 target 为空
func (a *routingAgent) pickHandoff(ctx context.Context, invocation *blades.Invocation) (last *blades.Message, target string, err error) {
	for msg, err := range a.Agent.Run(ctx, nextInvocation(invocation)) {
		if err != nil {
			return nil, "", err
		}
		last = msg
		if v, ok := msg.Actions[actionHandoffToAgent]; ok {
			name, _ := v.(string)
			return msg, strings.TrimSpace(name), nil
		}
	}
	return last, "", nil
}

func (a *routingAgent) Run(ctx context.Context, invocation *blades.Invocation) blades.Generator[*blades.Message, error] {
	return func(yield func(*blades.Message, error) bool) {
		last, target, err := a.pickHandoff(ctx, invocation)
		if err != nil {
			yield(nil, err)
			return
		}
		if target == "" {
			if last != nil {
				stampAuthor(last, consts.AgentNameMain)
				yield(last, nil)
			}
			return
		}

		sub, ok := a.targets[target]
		if !ok {
			yield(nil, fmt.Errorf("target agent not found: %s", target))
			return
		}
		for msg, err := range sub.Run(ctx, nextInvocation(invocation)) {
			if msg != nil {
				stampAuthor(msg, target)
			}
			if !yield(msg, err) {
				return
			}
		}
	}
}

func stampAuthor(msg *blades.Message, name string) {
	if msg.Author == "" {
		msg.Author = name
	}
}
