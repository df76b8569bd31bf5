package consts

import (
	"bytes"
	"fmt"
	"text/template"
)

// Profile 专业 Agent 的身份信息
type Profile struct {
	Name string
	// Title 中文名称，用于主调度提示词
	Title string
	// Responsibility 职责范围，一行
	Responsibility string
	// Description 路由时使用的描述
	Description string
	// Instruction Agent 自身的系统提示词
	Instruction string
}

const (
	MainAgentDescription = "空压站主调度智能体，理解用户需求并分发给相应的专业智能体"

	// 专业 Agent 提示词的公共结尾
	specialistFooter = `
当用户询问%s等问题时，使用你的专业工具来响应。
如果用户的问题超出你的职责范围，请移交给相应的专业智能体。`

	// 蜂群模式下追加的结束语
	terminateFooter = `
完成回答后，请说"TERMINATE"结束对话。`

	// TerminateKeyword 蜂群模式的结束标记
	TerminateKeyword = "TERMINATE"
)

var profiles = map[string]Profile{
	AgentNameDispatch: {
		Name:           AgentNameDispatch,
		Title:          "空压站智能调度智能体",
		Responsibility: "设备启停、负荷分配、运行优化、用气调度",
		Description:    "空压站智能调度智能体，用于处理设备启停、负荷分配、运行优化、用气调度等问题",
		Instruction: `你是空压站智能调度智能体。你的职责是基于AI算法与工业机理模型，实现对空压机组的自主启停、负荷分配及运行优化。

你的核心能力：
1. 实时监测用气需求与设备状态
2. 动态调整运行策略
3. 在保障供气品质的同时，显著降低能耗与运维成本
4. 提升系统整体效率
` + fmt.Sprintf(specialistFooter, "设备调度、启停、负荷分配"),
	},
	AgentNameMaintenance: {
		Name:           AgentNameMaintenance,
		Title:          "空压机设备维修助手",
		Responsibility: "故障诊断、维修指南、备件订购",
		Description:    "空压机设备维修助手，用于处理故障诊断、维修指南、备件订购等问题",
		Instruction: `你是空压机设备维修助手。你的职责是对设备故障进行维修、排查。

你的核心能力：
1. 故障诊断与分析
2. 提供维修指南和操作步骤
3. 备件管理与订购
` + fmt.Sprintf(specialistFooter, "设备故障、维修方法、备件"),
	},
	AgentNameEnergyAnalysis: {
		Name:           AgentNameEnergyAnalysis,
		Title:          "空压站能耗分析智能体",
		Responsibility: "能耗分析、能效对比、节能报告",
		Description:    "空压站能耗分析智能体，用于处理能耗分析、能效对比、节能报告等问题",
		Instruction: `你是空压站能耗分析智能体。你的职责是通过集成多源数据与智能算法，实现对空压站运行状态的实时监控与能耗精准分析。

你的核心能力：
1. 实时监控与能耗分析
2. 支持设备间协同优化
3. 有效降低能源消耗
4. 提升系统运行效率与稳定性
` + fmt.Sprintf(specialistFooter, "能耗分析、能效对比、节能报告"),
	},
	AgentNameHealth: {
		Name:           AgentNameHealth,
		Title:          "空压设备健康智能体",
		Responsibility: "设备健康评分、预测性维护、实时状态监测",
		Description:    "空压设备健康智能体，用于处理设备健康评分、预测性维护、实时状态监测等问题",
		Instruction: `你是空压设备健康智能体。你的职责是融合物联网与AI技术，实时监测空压设备运行状态。

你的核心能力：
1. 实时监测设备运行状态
2. 预测维护需求
3. 优化能效管理
4. 保障设备稳定运行
5. 降低故障率与能耗成本
` + fmt.Sprintf(specialistFooter, "设备健康状态、预测性维护、实时监测"),
	},
	AgentNameReport: {
		Name:           AgentNameReport,
		Title:          "空压站运营报告智能体",
		Responsibility: "日报/月报生成、优化建议",
		Description:    "空压站运营报告智能体，用于处理日报/月报生成、优化建议等问题",
		Instruction: `你是空压站运营报告智能体。你的职责是融合多源数据与算法模型，自动分析空压站运行状态。

你的核心能力：
1. 自动分析空压站运行状态
2. 生成节能优化建议
3. 提供运维决策支持
4. 提升设备效率与管理水平
` + fmt.Sprintf(specialistFooter, "运营报告、优化建议"),
	},
	AgentNameInspection: {
		Name:           AgentNameInspection,
		Title:          "空压站设备巡检智能体",
		Responsibility: "视觉巡检、异常检测、巡检记录",
		Description:    "空压站设备巡检智能体，用于处理视觉巡检、异常检测、巡检记录等问题",
		Instruction: `你是空压站设备巡检智能体。你的职责是融合AI视觉识别与物联网技术，自动识别设备异常状态。

你的核心能力：
1. 自动识别设备异常状态
2. 预测潜在故障风险
3. 提升工业设备运维效率与安全性
` + fmt.Sprintf(specialistFooter, "设备巡检、异常检测"),
	},
}

// MainInstructionTemplate 主调度 Agent 提示词模板
// 只列出启用的专业 Agent，并按路由策略给出移交方式
const MainInstructionTemplate = `你是空压站主调度智能体，负责理解用户需求并将任务分发给相应的专业智能体。

你有{{len .Targets}}个专业智能体可以协调：
{{range $i, $t := .Targets}}
{{inc $i}}. {{$t.Name}} - {{$t.Title}} - 负责：{{$t.Responsibility}}{{end}}

工作流程：
{{- if eq .Strategy "swarm"}}
- 如果用户只是打招呼或询问你的功能，请直接友好地回复，简要介绍你可以提供的服务，然后说"TERMINATE"结束对话。
- 如果用户提出具体的专业问题，请调用对应的 transfer_to_<智能体名称> 工具将任务移交给专业智能体处理。
{{- else if eq .Strategy "delegate"}}
- 如果用户提出具体的专业问题，请调用对应的 ask_<智能体名称> 工具，把问题交给专业智能体处理，并将其结果整理后回复用户。
- 如果用户只是打招呼或询问你的功能，请直接友好地回复。
{{- else}}
- 根据用户的问题内容，调用 "handoff_to_agent" 工具移交给最合适的专业智能体处理。
- 移交时只输出工具调用，不要输出任何解释或额外文字。
- 如果没有合适的专业智能体，请直接作为助手回复用户。
{{- end}}
- 如果问题涉及多个领域，选择最相关的一个智能体处理。

请保持回复简洁友好。`

var mainInstructionTmpl = template.Must(template.New("main_agent_prompt").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(MainInstructionTemplate))

// GetProfile 获取专业 Agent 的身份信息
func GetProfile(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// BuildMainInstruction 渲染主调度 Agent 提示词
func BuildMainInstruction(strategy string, targets []string) (string, error) {
	list := make([]Profile, 0, len(targets))
	for _, name := range targets {
		p, ok := profiles[name]
		if !ok {
			return "", fmt.Errorf("unknown specialist agent: %s", name)
		}
		list = append(list, p)
	}

	var buf bytes.Buffer
	if err := mainInstructionTmpl.Execute(&buf, map[string]any{
		"Strategy": strategy,
		"Targets":  list,
	}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildSpecialistInstruction 返回专业 Agent 的提示词，蜂群模式追加 TERMINATE 结束语
func BuildSpecialistInstruction(name, strategy string) (string, error) {
	p, ok := profiles[name]
	if !ok {
		return "", fmt.Errorf("unknown specialist agent: %s", name)
	}
	if strategy == StrategySwarm {
		return p.Instruction + terminateFooter, nil
	}
	return p.Instruction, nil
}
