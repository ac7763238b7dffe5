package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"journal-backend/internal/model"
	"journal-backend/internal/prompt"
)

func newTasksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "列出支持的任务和风格",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "tasks:")
			for _, task := range model.AllTasks() {
				fmt.Fprintf(out, "  %s\n", task)
			}
			fmt.Fprintf(out, "styles: %s\n", strings.Join(prompt.Styles(), ", "))
			fmt.Fprintf(out, "tones: %s\n", strings.Join(model.Tones, ", "))
			fmt.Fprintf(out, "audiences: %s\n", strings.Join(model.Audiences, ", "))
			fmt.Fprintf(out, "lengths: %s\n", strings.Join(model.Lengths, ", "))
		},
	}
}
