package consts

const (
	AgentNameMain           = "main_agent"
	AgentNameDispatch       = "dispatch_agent"
	AgentNameMaintenance    = "maintenance_agent"
	AgentNameEnergyAnalysis = "energy_analysis_agent"
	AgentNameHealth         = "health_agent"
	AgentNameReport         = "report_agent"
	AgentNameInspection     = "inspection_agent"
)

// 路由策略
const (
	StrategyHandoff  = "handoff"
	StrategySwarm    = "swarm"
	StrategyDelegate = "delegate"
)

// Session State 中使用的键
const (
	// StateActiveAgent 最终作答的 Agent 名称
	StateActiveAgent = "active_agent"
	// StateHandoffPath 本轮对话经过的 Agent 序列
	StateHandoffPath = "handoff_path"
)

// SpecialistAgents 六个专业 Agent，顺序固定
// 至少需要启用其中一个，系统才能正常运行
var SpecialistAgents = []string{
	AgentNameDispatch,
	AgentNameMaintenance,
	AgentNameEnergyAnalysis,
	AgentNameHealth,
	AgentNameReport,
	AgentNameInspection,
}

// IsSpecialist 判断名称是否为专业 Agent
func IsSpecialist(name string) bool {
	for _, n := range SpecialistAgents {
		if n == name {
			return true
		}
	}
	return false
}

// IsKnownAgent 判断名称是否为系统内的 Agent（含 main_agent）
func IsKnownAgent(name string) bool {
	return name == AgentNameMain || IsSpecialist(name)
}
