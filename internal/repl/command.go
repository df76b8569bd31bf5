package repl

import "strings"

type commandKind int

const (
	cmdChat commandKind = iota
	cmdEmpty
	cmdExit
	cmdHelp
	cmdSave
	cmdLoad
)

type command struct {
	kind commandKind
	arg  string
}

// parseCommand 识别内置命令，其余输入作为对话内容
func parseCommand(input string) command {
	text := strings.TrimSpace(input)
	if text == "" {
		return command{kind: cmdEmpty}
	}

	switch strings.ToLower(text) {
	case "quit", "exit", "退出", "q":
		return command{kind: cmdExit}
	case "help":
		return command{kind: cmdHelp}
	}

	head, rest, _ := strings.Cut(text, " ")
	switch strings.ToLower(head) {
	case "save":
		return command{kind: cmdSave, arg: strings.TrimSpace(rest)}
	case "load":
		return command{kind: cmdLoad, arg: strings.TrimSpace(rest)}
	}
	return command{kind: cmdChat, arg: text}
}
