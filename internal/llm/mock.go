package llm

import (
	"context"
	"fmt"
	"strings"

	"journal-backend/internal/model"
)

// MockClient 本地调试用，不调用外部模型，原样回显提示词
type MockClient struct{}

func (MockClient) Name() string {
	return "mock"
}

func (MockClient) Invoke(_ context.Context, req *Request) (model.Envelope, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s (%s)\n\n", req.Task, req.ModelID))
	if len(req.Image) > 0 {
		sb.WriteString(fmt.Sprintf("첨부 이미지: %d bytes\n\n", len(req.Image)))
	}
	sb.WriteString("```\n")
	sb.WriteString(req.User)
	sb.WriteString("\n```\n")
	return assistantDocument(sb.String(), "end_turn", nil)
}
