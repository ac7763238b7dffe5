package llm

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"journal-backend/internal/config"
	"journal-backend/internal/model"
)

type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAIClient(cfg config.OpenAIConfig, httpClient *http.Client) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (c *OpenAIClient) Name() string {
	return "openai"
}

func (c *OpenAIClient) Invoke(ctx context.Context, req *Request) (model.Envelope, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.ModelID,
		Messages:    convertMessages(req),
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	choice := resp.Choices[0]
	return assistantDocument(choice.Message.Content, string(choice.FinishReason), &tokenUsage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	})
}

// convertMessages 有图片时用户消息改为多段内容，图片以 data URL 内联
func convertMessages(req *Request) []openai.ChatCompletionMessage {
	system := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.System,
	}

	if len(req.Image) == 0 {
		return []openai.ChatCompletionMessage{system, {
			Role:    openai.ChatMessageRoleUser,
			Content: req.User,
		}}
	}

	return []openai.ChatCompletionMessage{system, {
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.User},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL(req.Image),
				Detail: openai.ImageURLDetailAuto,
			}},
		},
	}}
}

func dataURL(jpeg []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)
}
