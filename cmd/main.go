package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"journal-backend/internal/config"
	"journal-backend/pkg/logger"
)

func main() {
	// .env 不存在时忽略
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "journal",
		Short:         "AI 글쓰기 도우미 서버와 CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
			return nil, fmt.Errorf("failed to init logger: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(
		newServeCommand(loadConfig),
		newGenerateCommand(loadConfig),
		newTasksCommand(),
	)
	return root
}
