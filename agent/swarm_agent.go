package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-kratos/blades"
	"github.com/go-kratos/blades/tools"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/airstation/internal/consts"
)

const (
	actionTransferToAgent = "transfer_to_agent"
	transferToolPrefix    = "transfer_to_"
)

// ErrMaxHops 蜂群内移交次数超过上限
var ErrMaxHops = errors.New("swarm exceeded max hops")

// transferTool 每个目标 Agent 一个工具，无参数
type transferTool struct {
	target      string
	description string
}

func (t *transferTool) Name() string { return transferToolPrefix + t.target }
func (t *transferTool) Description() string {
	return fmt.Sprintf("Transfer the conversation to %s. %s", t.target, t.description)
}
func (t *transferTool) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	}
}
func (t *transferTool) OutputSchema() *jsonschema.Schema { return nil }
func (t *transferTool) Handle(ctx context.Context, _ string) (string, error) {
	toolCtx, ok := blades.FromToolContext(ctx)
	if !ok {
		return "", fmt.Errorf("tool context not found in context")
	}
	toolCtx.SetAction(actionTransferToAgent, t.target)
	return fmt.Sprintf("Transferred to %s, adopting the role of %s immediately.", t.target, t.target), nil
}

// transferTools 为 self 生成指向其余成员的移交工具
func transferTools(members []string, self string) []tools.Tool {
	out := make([]tools.Tool, 0, len(members))
	for _, name := range members {
		if name == self {
			continue
		}
		desc := consts.MainAgentDescription
		if p, ok := consts.GetProfile(name); ok {
			desc = p.Description
		}
		out = append(out, &transferTool{target: name, description: desc})
	}
	return out
}

// SwarmConfig 蜂群配置
type SwarmConfig struct {
	Name        string
	Description string
	Entry       string
	Members     []blades.Agent
	MaxHops     int
}

// swarmAgent 当前活跃 Agent 调用 transfer_to_* 后切换活跃 Agent，直到有人直接作答或说 TERMINATE
// 每一跳使用新的 invocation，成员之间不共享工具与系统提示
type swarmAgent struct {
	name        string
	description string
	entry       string
	maxHops     int
	members     map[string]blades.Agent
}

func NewSwarmAgent(cfg SwarmConfig) (blades.Agent, error) {
	members := make(map[string]blades.Agent, len(cfg.Members))
	for _, m := range cfg.Members {
		members[strings.TrimSpace(m.Name())] = m
	}
	if _, ok := members[cfg.Entry]; !ok {
		return nil, fmt.Errorf("swarm entry agent %s not found", cfg.Entry)
	}
	maxHops := cfg.MaxHops
	if maxHops <= 0 {
		maxHops = 8
	}
	return &swarmAgent{
		name:        cfg.Name,
		description: cfg.Description,
		entry:       cfg.Entry,
		maxHops:     maxHops,
		members:     members,
	}, nil
}

func (a *swarmAgent) Name() string        { return a.name }
func (a *swarmAgent) Description() string { return a.description }

func (a *swarmAgent) Run(ctx context.Context, invocation *blades.Invocation) blades.Generator[*blades.Message, error] {
	return func(yield func(*blades.Message, error) bool) {
		active := a.entry
		for hop := 0; hop < a.maxHops; hop++ {
			agent, ok := a.members[active]
			if !ok {
				yield(nil, fmt.Errorf("target agent not found: %s", active))
				return
			}

			next := ""
			for message, err := range agent.Run(ctx, nextInvocation(invocation)) {
				if err != nil {
					yield(nil, err)
					return
				}
				if target, ok := message.Actions[actionTransferToAgent]; ok {
					next, _ = target.(string)
					break
				}
				if containsTerminate(message) {
					yield(stripTerminate(message), nil)
					return
				}
				if !yield(message, nil) {
					return
				}
			}

			next = strings.TrimSpace(next)
			if next == "" || next == active {
				return
			}
			active = next
		}
		yield(nil, ErrMaxHops)
	}
}

func containsTerminate(message *blades.Message) bool {
	return message != nil && strings.Contains(message.Text(), consts.TerminateKeyword)
}

// stripTerminate 去掉回复中的 TERMINATE 标记
func stripTerminate(message *blades.Message) *blades.Message {
	text := strings.TrimSpace(strings.ReplaceAll(message.Text(), consts.TerminateKeyword, ""))
	out := blades.AssistantMessage(text)
	out.Author = message.Author
	out.Status = message.Status
	out.TokenUsage = message.TokenUsage
	return out
}
