package llm

import (
	"encoding/json"

	"journal-backend/internal/model"
)

// 各 provider 的回复统一包成 Converse 响应文档的形状
type converseDocument struct {
	Output     converseOutput `json:"output"`
	StopReason string         `json:"stopReason,omitempty"`
	Usage      *tokenUsage    `json:"usage,omitempty"`
}

type converseOutput struct {
	Message converseMessage `json:"message"`
}

type converseMessage struct {
	Role    string           `json:"role"`
	Content []map[string]any `json:"content"`
}

type tokenUsage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

func textBlock(text string) map[string]any {
	return map[string]any{"text": text}
}

func encodeDocument(doc *converseDocument) (model.Envelope, error) {
	if doc.Output.Message.Content == nil {
		doc.Output.Message.Content = []map[string]any{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return model.Envelope(data), nil
}

func assistantDocument(text, stopReason string, usage *tokenUsage) (model.Envelope, error) {
	return encodeDocument(&converseDocument{
		Output: converseOutput{Message: converseMessage{
			Role:    "assistant",
			Content: []map[string]any{textBlock(text)},
		}},
		StopReason: stopReason,
		Usage:      usage,
	})
}
