// Package station 提供空压站各专业 Agent 使用的模拟工具。
// 工具只返回固定模板文本，不连接真实设备。
package station

import (
	"fmt"
	"strings"

	"github.com/go-kratos/blades/tools"

	"github.com/airstation/internal/consts"
)

// Response 所有工具统一的返回结构
// 参数错误通过 Success=false 返回给模型，而不是 Go error
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func success(format string, args ...any) (Response, error) {
	return Response{Success: true, Message: fmt.Sprintf(format, args...)}, nil
}

func failure(format string, args ...any) (Response, error) {
	return Response{Success: false, Message: fmt.Sprintf(format, args...)}, nil
}

// EquipmentRequest 以设备编号为唯一参数的请求
type EquipmentRequest struct {
	EquipmentID string `json:"equipment_id" jsonschema:"设备编号，例如 1号空压机"`
}

// Empty 无参数请求
type Empty struct{}

type toolBuilder func() (tools.Tool, error)

// 专业 Agent 与工具构造函数的映射
var catalog = map[string][]toolBuilder{
	consts.AgentNameDispatch:       dispatchTools,
	consts.AgentNameMaintenance:    maintenanceTools,
	consts.AgentNameEnergyAnalysis: energyTools,
	consts.AgentNameHealth:         healthTools,
	consts.AgentNameReport:         reportTools,
	consts.AgentNameInspection:     inspectionTools,
}

// ToolsFor 返回指定专业 Agent 的工具集合
func ToolsFor(agentName string) ([]tools.Tool, error) {
	builders, found := catalog[agentName]
	if !found {
		return nil, fmt.Errorf("no station tools for agent: %s", agentName)
	}

	result := make([]tools.Tool, 0, len(builders))
	for _, build := range builders {
		t, err := build()
		if err != nil {
			return nil, fmt.Errorf("build tool for %s: %w", agentName, err)
		}
		result = append(result, t)
	}
	return result, nil
}

func requireID(value string) (string, bool) {
	value = strings.TrimSpace(value)
	return value, value != ""
}
