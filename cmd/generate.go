package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"journal-backend/internal/config"
	"journal-backend/internal/imageproc"
	"journal-backend/internal/llm"
	"journal-backend/internal/model"
	"journal-backend/internal/prompt"
	"journal-backend/internal/service"
)

type generateOptions struct {
	task      string
	text      string
	imagePath string
	provider  string
	style     model.StyleConfig
}

// newGenerateCommand 单次生成，文本为空时从标准输入读取
func newGenerateCommand(loadConfig func() (*config.Config, error)) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "对一段文本执行一次任务并输出结果",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if opts.provider != "" {
				cfg.Model.Provider = opts.provider
			}
			client, err := llm.NewClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return runGenerate(cmd, client, cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.task, "task", string(model.TaskRewrite), "任务类型")
	flags.StringVar(&opts.text, "text", "", "输入文本，为空时读取标准输入")
	flags.StringVar(&opts.imagePath, "image", "", "附带图片路径")
	flags.StringVar(&opts.provider, "provider", "", "覆盖配置中的 model.provider")
	flags.StringVar(&opts.style.Style, "style", model.Styles[0], "rewrite 风格")
	flags.StringVar(&opts.style.Tone, "tone", "", "语气")
	flags.StringVar(&opts.style.Audience, "audience", "", "读者")
	flags.StringVar(&opts.style.Length, "length", "", "长度")
	flags.BoolVar(&opts.style.UseEmoji, "emoji", false, "使用表情符号")
	return cmd
}

func runGenerate(cmd *cobra.Command, client llm.Client, cfg *config.Config, opts *generateOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	task, err := model.ParseTaskKind(opts.task)
	if err != nil {
		return err
	}

	text := opts.text
	if text == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	session := model.NewSession("cli", "cli")
	session.History.SetCurrent(text)

	if opts.imagePath != "" {
		data, err := os.ReadFile(opts.imagePath)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		asset, err := imageproc.NewAsset(data)
		if err != nil {
			return err
		}
		session.Image = asset
	}

	dispatcher := service.NewDispatcher(prompt.NewRegistry(), client, cfg.Model)
	outcome, err := dispatcher.Run(ctx, session, model.TaskRequest{
		Task:  task,
		Text:  text,
		Style: &opts.style,
	})
	if err != nil {
		var invErr *llm.InvocationError
		if errors.As(err, &invErr) {
			return errors.New(invErr.UserMessage())
		}
		return err
	}

	if outcome.Status == model.StatusNoOp {
		fmt.Fprintln(cmd.ErrOrStderr(), "입력 텍스트가 비어 있거나 결과가 없습니다.")
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(outcome.Result, "\n"))
	return nil
}
