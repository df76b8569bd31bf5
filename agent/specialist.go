package agent

import (
	"fmt"

	"github.com/go-kratos/blades"
	"github.com/go-kratos/blades/tools"

	"github.com/airstation/internal/consts"
	"github.com/airstation/internal/middleware"
	"github.com/airstation/station"
)

// SpecialistConfig 专业 Agent 配置
type SpecialistConfig struct {
	Name     string
	Model    blades.ModelProvider
	Strategy string
	Observer middleware.InvocationObserver
	// Tools 额外工具，蜂群模式下为 transfer_to_* 工具
	Tools []tools.Tool
}

// NewSpecialistAgent 创建专业 Agent，挂载该领域的空压站工具
func NewSpecialistAgent(cfg SpecialistConfig) (blades.Agent, error) {
	profile, ok := consts.GetProfile(cfg.Name)
	if !ok {
		return nil, fmt.Errorf("unknown specialist agent: %s", cfg.Name)
	}
	if cfg.Model == nil {
		return nil, fmt.Errorf("model is required for agent %s", cfg.Name)
	}

	instruction, err := consts.BuildSpecialistInstruction(cfg.Name, cfg.Strategy)
	if err != nil {
		return nil, err
	}

	stationTools, err := station.ToolsFor(cfg.Name)
	if err != nil {
		return nil, err
	}
	allTools := append(stationTools, cfg.Tools...)

	return blades.NewAgent(
		cfg.Name,
		blades.WithDescription(profile.Description),
		blades.WithInstruction(instruction),
		blades.WithModel(cfg.Model),
		blades.WithTools(allTools...),
		blades.WithMiddleware(agentMiddlewares(cfg.Name, cfg.Observer)...),
	)
}

// agentMiddlewares 所有 Agent 共用的中间件
func agentMiddlewares(name string, observer middleware.InvocationObserver) []blades.Middleware {
	return []blades.Middleware{
		middleware.AgentLogging(name),
		middleware.AgentMetrics(name, observer),
		middleware.LoadSessionHistory(),
		middleware.RecordResponder(name),
	}
}
