package station

import (
	"context"
	"strings"

	"github.com/go-kratos/blades/tools"
)

type PeriodRequest struct {
	Period string `json:"period" jsonschema:"分析时段，例如 本月、上周"`
}

type CompareRequest struct {
	CompressorIDs string `json:"compressor_ids" jsonschema:"需要对比的空压机编号，逗号分隔"`
}

type InspectionRecordRequest struct {
	EquipmentID string `json:"equipment_id" jsonschema:"设备编号"`
	Result      string `json:"result" jsonschema:"巡检结论"`
}

var energyTools = []toolBuilder{
	func() (tools.Tool, error) {
		return tools.NewFunc("analyze_energy_consumption", "分析指定时段的能耗数据",
			func(ctx context.Context, req PeriodRequest) (Response, error) {
				period := strings.TrimSpace(req.Period)
				if period == "" {
					period = "本月"
				}
				return success("%s能耗分析：总耗电量 15,680 kWh，平均负载率 78%%，单位产气能耗 0.12 kWh/m³", period)
			})
	},
	func() (tools.Tool, error) {
		return tools.NewFunc("compare_energy_efficiency", "对比多台设备的能效",
			func(ctx context.Context, req CompareRequest) (Response, error) {
				ids, valid := requireID(req.CompressorIDs)
				if !valid {
					return failure("compressor_ids 不能为空")
				}
				return success("设备 %s 能效对比：1号机 0.115 kWh/m³（最优），2号机 0.128 kWh/m³，3号机 0.132 kWh/m³", ids)
			})
	},
	func() (tools.Tool, error) {
		return tools.NewFunc("generate_energy_report", "生成能耗分析报告",
			func(ctx context.Context, _ Empty) (Response, error) {
				return success("能耗分析报告：本月总能耗较上月降低5.2%%，主要节能措施包括优化启停策略和负载分配")
			})
	},
}

var healthTools = []toolBuilder{
	func() (tools.Tool, error) {
		return tools.NewFunc("get_health_score", "获取设备健康评分（0-100）",
			equipmentTool("设备 %s 健康评分：85分，状态良好，建议关注轴承温度趋势"))
	},
	func() (tools.Tool, error) {
		return tools.NewFunc("predict_maintenance", "预测维护需求",
			equipmentTool("设备 %s 预测性维护建议：预计15天后需要更换润滑油，30天后需要检查轴承"))
	},
	func() (tools.Tool, error) {
		return tools.NewFunc("get_realtime_status", "获取设备实时运行状态",
			equipmentTool("设备 %s 实时状态：运行中，排气温度 95°C，排气压力 0.72 MPa，振动 2.3 mm/s，电流 85A"))
	},
}

var reportTools = []toolBuilder{
	func() (tools.Tool, error) {
		return tools.NewFunc("generate_daily_report", "生成日报", fixedTool(
			"日报摘要：今日产气量 1,234,567 m³，设备平均负载率 82%，能耗成本 ¥45,678，无重大故障"))
	},
	func() (tools.Tool, error) {
		return tools.NewFunc("generate_monthly_report", "生成月报", fixedTool(
			"月报摘要：本月总产气量 36,789 m³，总能耗 523,456 kWh，设备可用率 98.5%，节能建议：优化2号机启停策略"))
	},
	func() (tools.Tool, error) {
		return tools.NewFunc("get_optimization_suggestions", "获取优化建议", fixedTool(
			"优化建议：1. 将3号机运行时间从高峰期调整至平谷期，预计月节省电费¥12,000 2. 更换1号机老化密封件，预计降低能耗3%"))
	},
}

var inspectionTools = []toolBuilder{
	func() (tools.Tool, error) {
		return tools.NewFunc("perform_visual_inspection", "执行视觉巡检",
			equipmentTool("设备 %s 视觉巡检结果：外观正常，无明显泄漏，仪表读数正常，发现轻微油渍需要清理"))
	},
	func() (tools.Tool, error) {
		return tools.NewFunc("detect_anomaly", "检测设备异常",
			equipmentTool("设备 %s 异常检测：检测到轻微振动异常，建议重点关注，可能需要动平衡调整"))
	},
	func() (tools.Tool, error) {
		return tools.NewFunc("record_inspection_result", "记录巡检结果",
			func(ctx context.Context, req InspectionRecordRequest) (Response, error) {
				id, valid := requireID(req.EquipmentID)
				if !valid {
					return failure("equipment_id 不能为空")
				}
				result := strings.TrimSpace(req.Result)
				if result == "" {
					return failure("result 不能为空")
				}
				return success("已记录设备 %s 的巡检结果：%s", id, result)
			})
	},
}

// equipmentTool 生成只需设备编号、返回模板文本的工具函数
func equipmentTool(template string) func(context.Context, EquipmentRequest) (Response, error) {
	return func(ctx context.Context, req EquipmentRequest) (Response, error) {
		id, valid := requireID(req.EquipmentID)
		if !valid {
			return failure("equipment_id 不能为空")
		}
		return success(template, id)
	}
}

// fixedTool 生成无参数、返回固定文本的工具函数
func fixedTool(message string) func(context.Context, Empty) (Response, error) {
	return func(ctx context.Context, _ Empty) (Response, error) {
		return Response{Success: true, Message: message}, nil
	}
}
