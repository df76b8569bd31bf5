package agent

import (
	"fmt"
	"log/slog"

	"github.com/go-kratos/blades"
	toolkit "github.com/go-kratos/blades/tools"

	"github.com/airstation/internal/consts"
	"github.com/airstation/internal/llm"
	"github.com/airstation/internal/middleware"
)

// MainAgentConfig 主调度 Agent 配置
type MainAgentConfig struct {
	ModelRegistry *llm.ModelRegistry
	EnabledAgents []string
	Strategy      string
	MaxHops       int
	Observer      middleware.InvocationObserver
	// Tools 额外挂到主调度 Agent 上的工具，例如 memory
	Tools []toolkit.Tool
}

// NewMainAgent 按路由策略构建主调度 Agent 及其专业 Agent
func NewMainAgent(cfg MainAgentConfig) (blades.Agent, error) {
	if cfg.ModelRegistry == nil {
		return nil, fmt.Errorf("ModelRegistry is required")
	}

	specialists := enabledSpecialists(cfg.EnabledAgents)
	if len(specialists) == 0 {
		return nil, fmt.Errorf("at least one specialist agent must be enabled")
	}

	strategy := cfg.Strategy
	if strategy == "" {
		strategy = consts.StrategyHandoff
	}

	var (
		agent blades.Agent
		err   error
	)
	switch strategy {
	case consts.StrategyHandoff:
		agent, err = newHandoffGraph(cfg, specialists)
	case consts.StrategySwarm:
		agent, err = newSwarmGraph(cfg, specialists)
	case consts.StrategyDelegate:
		agent, err = newDelegateGraph(cfg, specialists)
	default:
		return nil, fmt.Errorf("unsupported routing strategy: %s", strategy)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("main_agent.created",
		"strategy", strategy,
		"specialists", specialists,
		"specialists_count", len(specialists),
	)
	return agent, nil
}

// enabledSpecialists 按固定顺序筛出启用的专业 Agent
func enabledSpecialists(enabled []string) []string {
	set := make(map[string]struct{}, len(enabled))
	for _, name := range enabled {
		set[name] = struct{}{}
	}
	out := make([]string, 0, len(consts.SpecialistAgents))
	for _, name := range consts.SpecialistAgents {
		if _, ok := set[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

func buildSpecialists(cfg MainAgentConfig, strategy string, names []string, extra func(name string) []toolkit.Tool) ([]blades.Agent, error) {
	agents := make([]blades.Agent, 0, len(names))
	for _, name := range names {
		model, err := cfg.ModelRegistry.Get(name)
		if err != nil {
			return nil, err
		}
		var tools []toolkit.Tool
		if extra != nil {
			tools = extra(name)
		}
		agent, err := NewSpecialistAgent(SpecialistConfig{
			Name:     name,
			Model:    model,
			Strategy: strategy,
			Observer: cfg.Observer,
			Tools:    tools,
		})
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
		slog.Debug("main_agent.specialist.created", "agent", name)
	}
	return agents, nil
}

func newDispatcher(cfg MainAgentConfig, strategy string, specialists []string, tools ...toolkit.Tool) (blades.Agent, error) {
	model, err := cfg.ModelRegistry.Get(consts.AgentNameMain)
	if err != nil {
		return nil, err
	}
	instruction, err := consts.BuildMainInstruction(strategy, specialists)
	if err != nil {
		return nil, err
	}
	allTools := make([]toolkit.Tool, 0, len(tools)+len(cfg.Tools))
	allTools = append(allTools, tools...)
	allTools = append(allTools, cfg.Tools...)
	return blades.NewAgent(
		consts.AgentNameMain,
		blades.WithDescription(consts.MainAgentDescription),
		blades.WithInstruction(instruction),
		blades.WithModel(model),
		blades.WithTools(allTools...),
		blades.WithMiddleware(agentMiddlewares(consts.AgentNameMain, cfg.Observer)...),
	)
}

func newHandoffGraph(cfg MainAgentConfig, specialists []string) (blades.Agent, error) {
	subAgents, err := buildSpecialists(cfg, consts.StrategyHandoff, specialists, nil)
	if err != nil {
		return nil, err
	}
	root, err := newDispatcher(cfg, consts.StrategyHandoff, specialists, newHandoffTool(specialists))
	if err != nil {
		return nil, err
	}
	return newRoutingAgent(root, subAgents), nil
}

func newSwarmGraph(cfg MainAgentConfig, specialists []string) (blades.Agent, error) {
	members := append([]string{consts.AgentNameMain}, specialists...)
	subAgents, err := buildSpecialists(cfg, consts.StrategySwarm, specialists, func(name string) []toolkit.Tool {
		return transferTools(members, name)
	})
	if err != nil {
		return nil, err
	}
	root, err := newDispatcher(cfg, consts.StrategySwarm, specialists, transferTools(members, consts.AgentNameMain)...)
	if err != nil {
		return nil, err
	}
	return NewSwarmAgent(SwarmConfig{
		Name:        consts.AgentNameMain,
		Description: consts.MainAgentDescription,
		Entry:       consts.AgentNameMain,
		Members:     append([]blades.Agent{root}, subAgents...),
		MaxHops:     cfg.MaxHops,
	})
}

func newDelegateGraph(cfg MainAgentConfig, specialists []string) (blades.Agent, error) {
	subAgents, err := buildSpecialists(cfg, consts.StrategyDelegate, specialists, nil)
	if err != nil {
		return nil, err
	}
	tools := make([]toolkit.Tool, 0, len(subAgents))
	for _, sub := range subAgents {
		tools = append(tools, newDelegateTool(sub))
	}
	return newDispatcher(cfg, consts.StrategyDelegate, specialists, tools...)
}

// NewStationRunner 创建可恢复的 Runner
func NewStationRunner(main blades.Agent) *blades.Runner {
	return blades.NewRunner(main, blades.WithResumable(true))
}
