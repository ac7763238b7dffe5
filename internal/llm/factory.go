package llm

import (
	"context"
	"fmt"

	"journal-backend/internal/config"
	"journal-backend/internal/utils"
)

// NewClient 按 model.provider 创建客户端，并加上超时、日志和指标
func NewClient(ctx context.Context, cfg *config.Config) (Client, error) {
	var (
		client Client
		err    error
	)

	switch cfg.Model.Provider {
	case "bedrock":
		client, err = NewBedrockClient(ctx, cfg.Bedrock, cfg.Model.Timeout, cfg.Model.DebugRequest)
	case "openai":
		httpClient := utils.NewHTTPClient(cfg.Model.Timeout, cfg.Model.DebugRequest)
		client = NewOpenAIClient(cfg.OpenAI, httpClient)
	case "doubao":
		client, err = NewDoubaoClient(ctx, cfg.Doubao, cfg.Model.PrimaryModel)
	case "qwen":
		client, err = NewQwenClient(ctx, cfg.Qwen, cfg.Model.PrimaryModel, cfg.Model.Timeout, cfg.Model.DebugRequest)
	case "mock":
		client = MockClient{}
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.Model.Provider)
	}
	if err != nil {
		return nil, err
	}

	return Instrument(client, cfg.Model.Timeout), nil
}
