package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/airstation/internal/app"
)

const shutdownTimeout = 5 * time.Second

// exitError 携带进程退出码，评测未达标时使用
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

type rootOptions struct {
	configPath string
	strategy   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "air-station",
		Short:         "空压站多智能体系统",
		Long:          "空压站多智能体系统：主调度 Agent 把用户问题分发给调度、维修、能耗、健康、报告、巡检六个专业 Agent。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "./configs/config.toml", "配置文件路径")
	cmd.PersistentFlags().StringVar(&opts.strategy, "strategy", "", "路由策略: handoff, swarm, delegate（覆盖配置文件）")

	cmd.AddCommand(newChatCmd(opts))
	cmd.AddCommand(newEvalCmd(opts))
	cmd.AddCommand(newCasesCmd())
	return cmd
}

// startApplication 加载配置并初始化，返回的 stop 负责关闭
func startApplication(ctx context.Context, opts *rootOptions) (*app.Application, func(), error) {
	application, err := app.NewApplication(opts.configPath, app.WithStrategy(opts.strategy))
	if err != nil {
		return nil, nil, fmt.Errorf("create application: %w", err)
	}
	if err := application.Initialize(ctx); err != nil {
		_ = application.ShutdownWithTimeout(shutdownTimeout)
		return nil, nil, fmt.Errorf("initialize application: %w", err)
	}
	slog.Info("app.started",
		"config", opts.configPath,
		"strategy", application.Strategy(),
		"model", application.ModelDescription(),
		"agents", application.EnabledSpecialists(),
	)

	stop := func() {
		if err := application.ShutdownWithTimeout(shutdownTimeout); err != nil {
			slog.Error("app.shutdown.failed", "error", err)
		}
	}
	return application, stop, nil
}
