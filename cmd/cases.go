package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/airstation/internal/eval"
)

func newCasesCmd() *cobra.Command {
	var casesFile string

	cmd := &cobra.Command{
		Use:   "cases",
		Short: "列出测试用例",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cases, err := loadCases(casesFile, "")
			if err != nil {
				return err
			}
			printCases(cmd.OutOrStdout(), cases)
			return nil
		},
	}
	cmd.Flags().StringVar(&casesFile, "cases", "", "用例文件（.toml/.yaml），默认使用内置 20 道题")
	return cmd
}

func printCases(w io.Writer, cases []eval.Case) {
	for i, c := range cases {
		fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, c.ExpectedAgent, c.Question)
	}
}
