package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/airstation/internal/repl"
)

func newChatCmd(root *rootOptions) *cobra.Command {
	var (
		sessionID     string
		transcriptDir string
		noTranscript  bool
		noColor       bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "交互式对话",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			application, stop, err := startApplication(ctx, root)
			if err != nil {
				return err
			}
			defer stop()

			opts := []repl.Option{
				repl.WithApplication(application),
				repl.WithTranscriptDir(transcriptDir),
				repl.WithNoColor(noColor),
				repl.WithOutput(cmd.OutOrStdout()),
			}
			if noTranscript {
				opts = append(opts, repl.WithoutTranscript())
			}
			if sessionID != "" {
				s, err := application.OpenSession(ctx, sessionID)
				if err != nil {
					return fmt.Errorf("open session %s: %w", sessionID, err)
				}
				opts = append(opts, repl.WithSession(s))
			}

			r, err := repl.NewREPL(ctx, opts...)
			if err != nil {
				return err
			}
			defer r.Close()
			return r.Run()
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "恢复指定 id 的会话（需要配置 session.db_path）")
	cmd.Flags().StringVar(&transcriptDir, "transcript-dir", "", "对话记录目录，默认 ~/.air-station/sessions")
	cmd.Flags().BoolVar(&noTranscript, "no-transcript", false, "不写对话记录")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "关闭彩色输出")
	return cmd
}
