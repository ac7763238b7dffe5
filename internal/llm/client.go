package llm

import (
	"context"
	"fmt"

	"journal-backend/internal/model"
)

// 生成参数固定，不对外暴露
const (
	MaxTokens   = 3000
	Temperature = float32(0.3)
)

// Request 一次模型调用的全部输入。Image 为规范化后的 JPEG 字节，可为空
type Request struct {
	Task    model.TaskKind
	ModelID string
	System  string
	User    string
	Image   []byte
}

// Client 模型调用客户端，返回端点的原始响应文档
type Client interface {
	Name() string
	Invoke(ctx context.Context, req *Request) (model.Envelope, error)
}

// InvocationError 传输、鉴权或端点错误。不重试
type InvocationError struct {
	Provider string
	Model    string
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s invoke %s: %v", e.Provider, e.Model, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// UserMessage 展示给使用者的错误信息
func (e *InvocationError) UserMessage() string {
	return fmt.Sprintf("모델 호출 중 오류 발생: %v", e.Err)
}
