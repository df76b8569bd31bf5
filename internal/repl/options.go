package repl

import (
	"io"

	"github.com/go-kratos/blades"

	"github.com/airstation/internal/app"
)

// Option 配置 REPL
type Option func(*REPL) error

// WithApplication 设置已初始化的 Application
func WithApplication(application *app.Application) Option {
	return func(r *REPL) error {
		r.app = application
		return nil
	}
}

// WithSession 使用已有会话（例如按 id 恢复的会话），不设置时新建
func WithSession(s blades.Session) Option {
	return func(r *REPL) error {
		r.session = s
		return nil
	}
}

// WithTranscriptDir 对话记录目录，默认 ~/.air-station/sessions
func WithTranscriptDir(dir string) Option {
	return func(r *REPL) error {
		r.transcriptDir = dir
		return nil
	}
}

// WithoutTranscript 不写对话记录
func WithoutTranscript() Option {
	return func(r *REPL) error {
		r.transcriptEnabled = false
		return nil
	}
}

// WithPrompt 输入提示符，默认 "User: "
func WithPrompt(prefix string) Option {
	return func(r *REPL) error {
		r.promptPrefix = prefix
		return nil
	}
}

// WithNoColor 关闭彩色输出
func WithNoColor(noColor bool) Option {
	return func(r *REPL) error {
		r.printer = newPrinter(r.printer.out, noColor)
		return nil
	}
}

// WithOutput 输出目标，默认 os.Stdout
func WithOutput(w io.Writer) Option {
	return func(r *REPL) error {
		r.printer = newPrinter(w, r.printer.noColor)
		return nil
	}
}
