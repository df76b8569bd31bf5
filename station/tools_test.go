package station

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-kratos/blades/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airstation/internal/consts"
)

func findTool(t *testing.T, agent, name string) tools.Tool {
	t.Helper()
	set, err := ToolsFor(agent)
	require.NoError(t, err)
	for _, tool := range set {
		if tool.Name() == name {
			return tool
		}
	}
	t.Fatalf("tool %s not found for %s", name, agent)
	return nil
}

func call(t *testing.T, tool tools.Tool, input string) Response {
	t.Helper()
	raw, err := tool.Handle(context.Background(), input)
	require.NoError(t, err)
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return resp
}

func TestToolsFor(t *testing.T) {
	expected := map[string][]string{
		consts.AgentNameDispatch:       {"start_compressor", "stop_compressor", "adjust_load", "get_air_demand"},
		consts.AgentNameMaintenance:    {"diagnose_fault", "get_repair_guide", "order_spare_parts"},
		consts.AgentNameEnergyAnalysis: {"analyze_energy_consumption", "compare_energy_efficiency", "generate_energy_report"},
		consts.AgentNameHealth:         {"get_health_score", "predict_maintenance", "get_realtime_status"},
		consts.AgentNameReport:         {"generate_daily_report", "generate_monthly_report", "get_optimization_suggestions"},
		consts.AgentNameInspection:     {"perform_visual_inspection", "detect_anomaly", "record_inspection_result"},
	}

	total := 0
	for _, agent := range consts.SpecialistAgents {
		set, err := ToolsFor(agent)
		require.NoError(t, err)

		names := make([]string, 0, len(set))
		for _, tool := range set {
			names = append(names, tool.Name())
			assert.NotEmpty(t, tool.Description())
		}
		assert.Equal(t, expected[agent], names, agent)
		total += len(set)
	}
	assert.Equal(t, 19, total)
}

func TestToolsFor_Unknown(t *testing.T) {
	_, err := ToolsFor(consts.AgentNameMain)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no station tools for agent")
}

func TestDispatchTools(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		input   string
		success bool
		message string
	}{
		{"启动", "start_compressor", `{"compressor_id":"1号"}`, true, "空压机 1号 已启动"},
		{"停止", "stop_compressor", `{"compressor_id":"3号"}`, true, "空压机 3号 已停止"},
		{"空编号", "start_compressor", `{"compressor_id":"  "}`, false, "compressor_id 不能为空"},
		{"调整负荷", "adjust_load", `{"compressor_id":"2号","load_percentage":80}`, true, "空压机 2号 负荷已调整至 80%"},
		{"负荷越界", "adjust_load", `{"compressor_id":"2号","load_percentage":120}`, false, "负荷百分比 120 超出范围，应在 0-100 之间"},
		{"用气需求", "get_air_demand", `{}`, true, "当前用气需求：1200 m³/min，压力要求：0.7 MPa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, findTool(t, consts.AgentNameDispatch, tt.tool), tt.input)
			assert.Equal(t, tt.success, resp.Success)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestMaintenanceTools(t *testing.T) {
	guide := findTool(t, consts.AgentNameMaintenance, "get_repair_guide")

	resp := call(t, guide, `{"fault_type":"温度过高"}`)
	assert.True(t, resp.Success)
	assert.Equal(t, "1. 检查冷却器 2. 清理散热片 3. 检查润滑油位 4. 检查环境通风", resp.Message)

	resp = call(t, guide, `{"fault_type":"漏气"}`)
	assert.True(t, resp.Success)
	assert.Equal(t, "未找到'漏气'的维修指南，请联系技术支持", resp.Message)

	order := findTool(t, consts.AgentNameMaintenance, "order_spare_parts")
	resp = call(t, order, `{"part_name":"轴承","quantity":5}`)
	assert.True(t, resp.Success)
	assert.Equal(t, "已下单订购 5 个 轴承，预计3天内到货", resp.Message)

	resp = call(t, order, `{"part_name":"轴承","quantity":0}`)
	assert.False(t, resp.Success)

	diagnose := findTool(t, consts.AgentNameMaintenance, "diagnose_fault")
	resp = call(t, diagnose, `{"equipment_id":"1号","symptom":"异常振动"}`)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "根据症状'异常振动'")
}

func TestEquipmentTools(t *testing.T) {
	tests := []struct {
		agent  string
		tool   string
		prefix string
	}{
		{consts.AgentNameHealth, "get_health_score", "设备 1号 健康评分：85分"},
		{consts.AgentNameHealth, "predict_maintenance", "设备 1号 预测性维护建议"},
		{consts.AgentNameHealth, "get_realtime_status", "设备 1号 实时状态：运行中"},
		{consts.AgentNameInspection, "perform_visual_inspection", "设备 1号 视觉巡检结果"},
		{consts.AgentNameInspection, "detect_anomaly", "设备 1号 异常检测"},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			tool := findTool(t, tt.agent, tt.tool)

			resp := call(t, tool, `{"equipment_id":"1号"}`)
			assert.True(t, resp.Success)
			assert.Contains(t, resp.Message, tt.prefix)

			resp = call(t, tool, `{"equipment_id":""}`)
			assert.False(t, resp.Success)
			assert.Equal(t, "equipment_id 不能为空", resp.Message)
		})
	}
}

func TestFixedTools(t *testing.T) {
	resp := call(t, findTool(t, consts.AgentNameReport, "generate_monthly_report"), `{}`)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "设备可用率 98.5%")

	resp = call(t, findTool(t, consts.AgentNameEnergyAnalysis, "generate_energy_report"), `{}`)
	assert.Contains(t, resp.Message, "降低5.2%")

	resp = call(t, findTool(t, consts.AgentNameEnergyAnalysis, "analyze_energy_consumption"), `{"period":""}`)
	assert.Contains(t, resp.Message, "本月能耗分析")
}

func TestRecordInspectionResult(t *testing.T) {
	tool := findTool(t, consts.AgentNameInspection, "record_inspection_result")

	resp := call(t, tool, `{"equipment_id":"3号","result":"设备正常"}`)
	assert.True(t, resp.Success)
	assert.Equal(t, "已记录设备 3号 的巡检结果：设备正常", resp.Message)

	resp = call(t, tool, `{"equipment_id":"3号"}`)
	assert.False(t, resp.Success)
}
