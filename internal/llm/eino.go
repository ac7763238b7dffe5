package llm

import (
	"context"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"

	"journal-backend/internal/config"
	"journal-backend/internal/model"
	"journal-backend/internal/utils"
	"journal-backend/pkg/logger"
)

// EinoClient 通过 eino ChatModel 调用豆包、通义等模型
type EinoClient struct {
	name string
	chat einoModel.BaseChatModel
}

func NewEinoClient(name string, chat einoModel.BaseChatModel) *EinoClient {
	return &EinoClient{name: name, chat: chat}
}

func NewDoubaoClient(ctx context.Context, cfg config.DoubaoConfig, defaultModel string) (*EinoClient, error) {
	logger.Infof("Using Doubao model: %s, API key: %s", defaultModel, maskKey(cfg.APIKey))

	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   defaultModel,
		CustomHeader: map[string]string{
			"X-Ark-Thinking-Mode": "disable",
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create doubao model")
	}
	return NewEinoClient("doubao", chatModel), nil
}

func NewQwenClient(ctx context.Context, cfg config.QwenConfig, defaultModel string, timeout time.Duration, debug bool) (*EinoClient, error) {
	logger.Infof("Using Qwen model: %s, BaseURL: %s, API key: %s", defaultModel, cfg.BaseURL, maskKey(cfg.APIKey))

	chatModel, err := qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		Model:      defaultModel,
		Timeout:    timeout,
		HTTPClient: utils.NewHTTPClient(timeout, debug),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create qwen model")
	}
	return NewEinoClient("qwen", chatModel), nil
}

func (c *EinoClient) Name() string {
	return c.name
}

func (c *EinoClient) Invoke(ctx context.Context, req *Request) (model.Envelope, error) {
	reply, err := c.chat.Generate(ctx, einoMessages(req),
		einoModel.WithModel(req.ModelID),
		einoModel.WithMaxTokens(MaxTokens),
		einoModel.WithTemperature(Temperature),
	)
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, errors.Errorf("no response from %s", c.name)
	}

	var (
		stopReason string
		usage      *tokenUsage
	)
	if meta := reply.ResponseMeta; meta != nil {
		stopReason = meta.FinishReason
		if meta.Usage != nil {
			usage = &tokenUsage{
				InputTokens:  meta.Usage.PromptTokens,
				OutputTokens: meta.Usage.CompletionTokens,
				TotalTokens:  meta.Usage.TotalTokens,
			}
		}
	}
	return assistantDocument(reply.Content, stopReason, usage)
}

func einoMessages(req *Request) []*schema.Message {
	system := schema.SystemMessage(req.System)
	if len(req.Image) == 0 {
		return []*schema.Message{system, schema.UserMessage(req.User)}
	}

	return []*schema.Message{system, {
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeText, Text: req.User},
			{Type: schema.ChatMessagePartTypeImageURL, ImageURL: &schema.ChatMessageImageURL{
				URL:      dataURL(req.Image),
				MIMEType: "image/jpeg",
			}},
		},
	}}
}

func maskKey(key string) string {
	if len(key) > 10 {
		return key[:10] + "..."
	}
	if key == "" {
		return "(empty)"
	}
	return "***"
}
