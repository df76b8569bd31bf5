package station

import (
	"context"
	"strings"

	"github.com/go-kratos/blades/tools"
)

type DiagnoseRequest struct {
	EquipmentID string `json:"equipment_id" jsonschema:"设备编号"`
	Symptom     string `json:"symptom" jsonschema:"故障现象描述"`
}

type RepairGuideRequest struct {
	FaultType string `json:"fault_type" jsonschema:"故障类型，例如 轴承磨损、温度过高、振动异常"`
}

type SparePartsRequest struct {
	PartName string `json:"part_name" jsonschema:"备件名称"`
	Quantity int    `json:"quantity" jsonschema:"订购数量，必须大于 0"`
}

// 已收录的维修指南
var repairGuides = map[string]string{
	"轴承磨损": "1. 停机断电 2. 拆卸轴承盖 3. 检查轴承状态 4. 更换轴承 5. 重新组装",
	"温度过高": "1. 检查冷却器 2. 清理散热片 3. 检查润滑油位 4. 检查环境通风",
	"振动异常": "1. 检查地脚螺栓 2. 检查转子平衡 3. 检查联轴器对中 4. 检查轴承间隙",
}

var maintenanceTools = []toolBuilder{
	func() (tools.Tool, error) {
		return tools.NewFunc("diagnose_fault", "诊断设备故障",
			func(ctx context.Context, req DiagnoseRequest) (Response, error) {
				id, valid := requireID(req.EquipmentID)
				if !valid {
					return failure("equipment_id 不能为空")
				}
				return success("设备 %s 故障诊断：根据症状'%s'，可能是轴承磨损，建议检查润滑系统", id, req.Symptom)
			})
	},
	func() (tools.Tool, error) {
		return tools.NewFunc("get_repair_guide", "获取维修指南",
			func(ctx context.Context, req RepairGuideRequest) (Response, error) {
				faultType := strings.TrimSpace(req.FaultType)
				guide, found := repairGuides[faultType]
				if !found {
					return success("未找到'%s'的维修指南，请联系技术支持", faultType)
				}
				return success("%s", guide)
			})
	},
	func() (tools.Tool, error) {
		return tools.NewFunc("order_spare_parts", "订购备件",
			func(ctx context.Context, req SparePartsRequest) (Response, error) {
				name := strings.TrimSpace(req.PartName)
				if name == "" {
					return failure("part_name 不能为空")
				}
				if req.Quantity <= 0 {
					return failure("订购数量必须大于 0，当前为 %d", req.Quantity)
				}
				return success("已下单订购 %d 个 %s，预计3天内到货", req.Quantity, name)
			})
	},
}
