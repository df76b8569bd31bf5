package station

import (
	"context"

	"github.com/go-kratos/blades/tools"
)

type CompressorRequest struct {
	CompressorID string `json:"compressor_id" jsonschema:"空压机编号，例如 1号"`
}

type AdjustLoadRequest struct {
	CompressorID   string `json:"compressor_id" jsonschema:"空压机编号"`
	LoadPercentage int    `json:"load_percentage" jsonschema:"目标负荷百分比，取值 0-100"`
}

var dispatchTools = []toolBuilder{
	func() (tools.Tool, error) {
		return tools.NewFunc("start_compressor", "启动指定编号的空压机",
			func(ctx context.Context, req CompressorRequest) (Response, error) {
				id, valid := requireID(req.CompressorID)
				if !valid {
					return failure("compressor_id 不能为空")
				}
				return success("空压机 %s 已启动", id)
			})
	},
	func() (tools.Tool, error) {
		return tools.NewFunc("stop_compressor", "停止指定编号的空压机",
			func(ctx context.Context, req CompressorRequest) (Response, error) {
				id, valid := requireID(req.CompressorID)
				if !valid {
					return failure("compressor_id 不能为空")
				}
				return success("空压机 %s 已停止", id)
			})
	},
	func() (tools.Tool, error) {
		return tools.NewFunc("adjust_load", "调整空压机负荷百分比（0-100）",
			func(ctx context.Context, req AdjustLoadRequest) (Response, error) {
				id, valid := requireID(req.CompressorID)
				if !valid {
					return failure("compressor_id 不能为空")
				}
				if req.LoadPercentage < 0 || req.LoadPercentage > 100 {
					return failure("负荷百分比 %d 超出范围，应在 0-100 之间", req.LoadPercentage)
				}
				return success("空压机 %s 负荷已调整至 %d%%", id, req.LoadPercentage)
			})
	},
	func() (tools.Tool, error) {
		return tools.NewFunc("get_air_demand", "获取当前用气需求",
			func(ctx context.Context, _ Empty) (Response, error) {
				return success("当前用气需求：1200 m³/min，压力要求：0.7 MPa")
			})
	},
}
