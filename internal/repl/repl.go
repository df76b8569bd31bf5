package repl

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/c-bata/go-prompt"
	"github.com/go-kratos/blades"
	"github.com/go-kratos/blades/memory"

	"github.com/airstation/internal/app"
	"github.com/airstation/internal/persistence"
)

const sessionTitle = "Air Station Session"

// REPL 空压站交互式对话
type REPL struct {
	app               *app.Application
	session           blades.Session
	memStore          memory.MemoryStore
	transcript        TranscriptWriter
	transcriptDir     string
	transcriptEnabled bool
	promptPrefix      string
	printer           printer
	lastSavedIdx      int

	ctx    context.Context
	cancel context.CancelFunc
	done   bool
}

// NewREPL 按选项创建 REPL，未指定会话时新建一个
func NewREPL(ctx context.Context, opts ...Option) (*REPL, error) {
	rctx, cancel := context.WithCancel(ctx)
	r := &REPL{
		ctx:               rctx,
		cancel:            cancel,
		promptPrefix:      "User: ",
		transcriptEnabled: true,
		printer:           newPrinter(os.Stdout, false),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			cancel()
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if r.app == nil {
		cancel()
		return nil, fmt.Errorf("application is required")
	}

	if r.session == nil {
		s, err := r.app.NewSession()
		if err != nil {
			cancel()
			return nil, fmt.Errorf("create session: %w", err)
		}
		r.session = s
	}
	r.memStore = r.app.MemoryStore()
	r.lastSavedIdx = len(r.session.History())

	if r.transcriptEnabled {
		tw, err := NewFileTranscriptWriterWithDir(r.session.ID(), r.transcriptDir)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("create transcript writer: %w", err)
		}
		r.transcript = tw
		slog.Info("repl.transcript.enabled", "path", tw.Path())
	} else {
		r.transcript = NopTranscriptWriter{}
	}

	return r, nil
}

// Session 当前会话
func (r *REPL) Session() blades.Session {
	return r.session
}

// Run 阻塞直到用户退出或 ctx 取消
func (r *REPL) Run() error {
	slog.Info("repl.start", "session_id", r.session.ID())
	r.printer.Banner(r.app.ModelDescription(), r.app.Strategy())

	p := prompt.New(
		r.executor,
		r.completer,
		prompt.OptionPrefix(r.promptPrefix),
		prompt.OptionTitle("Air Station"),
		prompt.OptionPrefixTextColor(prompt.Green),
		prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
		prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
		prompt.OptionSuggestionBGColor(prompt.DarkGray),
		prompt.OptionSetExitCheckerOnInput(func(string, bool) bool {
			return r.done
		}),
		prompt.OptionAddKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(*prompt.Buffer) {
				r.done = true
			},
		}),
	)

	p.Run()
	return nil
}

func (r *REPL) executor(input string) {
	if r.ctx.Err() != nil {
		r.done = true
		return
	}

	cmd := parseCommand(input)
	switch cmd.kind {
	case cmdEmpty:
		return
	case cmdExit:
		r.done = true
		r.printer.Goodbye()
		return
	case cmdHelp:
		r.printer.Help()
		return
	case cmdSave:
		r.save(cmd.arg)
		return
	case cmdLoad:
		r.load(cmd.arg)
		return
	}

	r.chat(cmd.arg)
}

func (r *REPL) chat(text string) {
	if err := r.transcript.WriteUserMessage(text); err != nil {
		slog.Warn("repl.transcript.write_failed", "error", err)
	}

	turn, err := r.app.Chat(r.ctx, r.session, text)
	if err != nil {
		if r.ctx.Err() != nil {
			slog.Error("repl.interrupted", "error", r.ctx.Err())
			r.done = true
			return
		}
		slog.Error("repl.chat.failed", "error", err)
		r.printer.Error(err)
		return
	}

	reply := turn.Output.Text()
	r.printer.Reply(turn.Agent, reply)
	slog.Debug("repl.chat.done", "agent", turn.Agent, "path", turn.Path)

	if err := r.transcript.WriteAssistantMessage(turn.Agent, reply); err != nil {
		slog.Warn("repl.transcript.write_failed", "error", err)
	}
	r.saveToMemory()
}

func (r *REPL) save(path string) {
	res, err := persistence.SaveSession(r.session, path, sessionTitle)
	if err != nil {
		r.printer.Error(err)
		return
	}
	r.printer.Info("已保存 %d 条消息到 %s", res.MessageCount, res.Path)
}

func (r *REPL) load(path string) {
	res, err := persistence.LoadSession(r.ctx, r.session, path)
	if err != nil {
		r.printer.Error(err)
		return
	}
	r.lastSavedIdx = len(r.session.History())
	r.printer.Info("已从 %s 加载 %d 条消息", path, res.MessageCount)
}

func (r *REPL) completer(d prompt.Document) []prompt.Suggest {
	suggestions := []prompt.Suggest{
		{Text: "help", Description: "显示帮助"},
		{Text: "save", Description: "保存会话"},
		{Text: "load", Description: "加载会话"},
		{Text: "quit", Description: "退出"},
	}
	return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
}

// saveToMemory 把新增的用户与助手消息写入记忆库
func (r *REPL) saveToMemory() {
	if r.memStore == nil {
		return
	}

	history := r.session.History()
	if r.lastSavedIdx > len(history) {
		r.lastSavedIdx = 0
	}
	for _, m := range history[r.lastSavedIdx:] {
		if m == nil {
			continue
		}
		switch m.Role {
		case blades.RoleUser, blades.RoleAssistant:
			if err := r.memStore.AddMemory(r.ctx, &memory.Memory{Content: m}); err != nil {
				slog.Warn("repl.memory.add_failed", "error", err)
			}
		}
	}
	r.lastSavedIdx = len(history)
}

// Close 刷新对话记录并释放资源
func (r *REPL) Close() error {
	slog.Info("repl.close", "session_id", r.session.ID())

	if err := r.transcript.Close(); err != nil {
		slog.Warn("repl.transcript.close_failed", "error", err)
	}
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}
