package repl

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TranscriptWriter 逐轮记录对话
type TranscriptWriter interface {
	WriteUserMessage(text string) error
	WriteAssistantMessage(agent, text string) error
	Path() string
	Close() error
}

// NopTranscriptWriter 不做任何记录
type NopTranscriptWriter struct{}

func (NopTranscriptWriter) WriteUserMessage(string) error              { return nil }
func (NopTranscriptWriter) WriteAssistantMessage(string, string) error { return nil }
func (NopTranscriptWriter) Path() string                               { return "" }
func (NopTranscriptWriter) Close() error                               { return nil }

// FileTranscriptWriter 把对话追加写入 <dir>/<sessionID>.md
// 每条消息写完即 Sync，进程中断时已有内容不会丢
type FileTranscriptWriter struct {
	path       string
	file       *os.File
	mu         sync.Mutex
	headerDone bool
}

// DefaultTranscriptDir 默认目录 ~/.air-station/sessions
func DefaultTranscriptDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".air-station", "sessions"), nil
}

// NewFileTranscriptWriterWithDir dir 为空时使用 DefaultTranscriptDir
func NewFileTranscriptWriterWithDir(sessionID, dir string) (*FileTranscriptWriter, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	if dir == "" {
		var err error
		dir, err = DefaultTranscriptDir()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}

	path := filepath.Join(dir, sessionID+".md")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transcript file: %w", err)
	}
	return &FileTranscriptWriter{path: path, file: file}, nil
}

func (w *FileTranscriptWriter) Path() string {
	return w.path
}

func (w *FileTranscriptWriter) writeHeader() error {
	if w.headerDone {
		return nil
	}
	header := fmt.Sprintf("# 空压站对话记录\n\n_开始时间: %s_\n\n---\n\n",
		time.Now().Format("2006-01-02 15:04:05"))
	if _, err := w.file.WriteString(header); err != nil {
		return err
	}
	w.headerDone = true
	return nil
}

func (w *FileTranscriptWriter) write(entry string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return fmt.Errorf("transcript closed")
	}
	if err := w.writeHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.file.WriteString(entry); err != nil {
		return err
	}
	return w.file.Sync()
}

func (w *FileTranscriptWriter) WriteUserMessage(text string) error {
	if err := w.write(fmt.Sprintf("### User\n\n%s\n\n", text)); err != nil {
		return fmt.Errorf("write user message: %w", err)
	}
	return nil
}

func (w *FileTranscriptWriter) WriteAssistantMessage(agent, text string) error {
	if err := w.write(fmt.Sprintf("### Assistant - [%s]\n\n%s\n\n---\n\n", agent, text)); err != nil {
		return fmt.Errorf("write assistant message: %w", err)
	}
	return nil
}

func (w *FileTranscriptWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("sync before close: %w", err)
	}
	err := w.file.Close()
	w.file = nil
	return err
}
