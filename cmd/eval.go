package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/airstation/config"
	"github.com/airstation/internal/eval"
)

type evalOptions struct {
	format      string
	noColor     bool
	casesFile   string
	workers     int
	minAccuracy float64
}

func newEvalCmd(root *rootOptions) *cobra.Command {
	opts := &evalOptions{}

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "运行多智能体识别准确性测试",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			application, stop, err := startApplication(ctx, root)
			if err != nil {
				return err
			}
			defer stop()

			cfg := application.Config()
			if !cmd.Flags().Changed("min-accuracy") {
				opts.minAccuracy = cfg.Eval.MinAccuracy
			}
			cases, err := loadCases(opts.casesFile, cfg.Eval.CasesFile)
			if err != nil {
				return err
			}
			reporter, err := eval.NewReporter(opts.format, opts.noColor)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			hcfg := harnessConfig(cfg.Eval, opts.workers)
			hcfg.Observer = application.Metrics()

			// 文本格式边跑边输出
			text, streaming := reporter.(*eval.TextReporter)
			if streaming {
				text.Header(out, application.Strategy(), len(cases))
				hcfg.OnResult = func(r eval.Result) { text.Result(out, r) }
			}

			started := time.Now()
			results, err := eval.NewHarness(application, hcfg).Run(ctx, cases)
			if err != nil {
				return fmt.Errorf("run eval: %w", err)
			}
			report := eval.NewReport(application.Strategy(), application.ModelDescription(), started, time.Now(), results)

			if streaming {
				text.Summary(out, report.Summary, report.Elapsed())
			} else if err := reporter.Render(out, report); err != nil {
				return fmt.Errorf("render report: %w", err)
			}

			if err := application.Publish(ctx, report); err != nil {
				slog.Error("eval.publish.failed", "run_id", report.RunID, "error", err)
			}
			return checkAccuracy(report.Summary.Accuracy, opts.minAccuracy)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", eval.FormatText, "输出格式: text, json, markdown")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "关闭彩色输出")
	cmd.Flags().StringVar(&opts.casesFile, "cases", "", "用例文件（.toml/.yaml），默认使用内置 20 道题")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "并发数，覆盖 eval.workers")
	cmd.Flags().Float64Var(&opts.minAccuracy, "min-accuracy", 0, "准确率低于该值（百分比）时以非零状态退出")
	return cmd
}

// loadCases 命令行参数优先，其次配置文件，都未指定时用内置用例
func loadCases(flagPath, configPath string) ([]eval.Case, error) {
	path := flagPath
	if path == "" {
		path = configPath
	}
	if path == "" {
		return eval.DefaultCases(), nil
	}
	return eval.LoadCases(path)
}

func harnessConfig(cfg config.EvalConfig, workers int) eval.HarnessConfig {
	hcfg := eval.HarnessConfig{
		Workers:         cfg.Workers,
		RatePerSecond:   cfg.RatePerSecond,
		BreakerFailures: cfg.BreakerFailures,
		Timeout:         cfg.Timeout.Duration,
	}
	if workers > 0 {
		hcfg.Workers = workers
	}
	return hcfg
}

func checkAccuracy(accuracy, threshold float64) error {
	if threshold <= 0 || accuracy >= threshold {
		return nil
	}
	return &exitError{
		code: 2,
		msg:  fmt.Sprintf("accuracy %.2f%% is below threshold %.2f%%", accuracy, threshold),
	}
}
