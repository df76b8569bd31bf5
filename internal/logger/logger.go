package logger

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/airstation/config"
)

// Initialize 初始化全局日志配置，返回关闭日志文件的函数
// 输出默认为 stderr，避免与评测报告混在 stdout
func Initialize(cfg config.LogConfig) (func() error, error) {
	level := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	var writer io.Writer = os.Stderr
	closer := func() error { return nil }
	switch cfg.Output {
	case "", "stderr":
	case "stdout":
		writer = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", cfg.Output, err)
		}
		writer = f
		closer = f.Close
	}

	handler := NewHandler(writer, cfg.Format, opts)
	slog.SetDefault(slog.New(handler))

	// 标准库 log 也写入 slog
	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(handler, level).Writer())
	return closer, nil
}

// NewHandler 按格式创建 slog handler
func NewHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel 解析日志级别，未知值回落到 info
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
