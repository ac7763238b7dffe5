package model

type CreateSessionRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type UpdateTextRequest struct {
	Text string `json:"text"`
}

// RunRequest Text 为 nil 时使用会话当前文本
type RunRequest struct {
	Task  string       `json:"task" binding:"required"`
	Text  *string      `json:"text"`
	Style *StyleConfig `json:"style"`
}

// TaskRequest 一次生成调用的输入
type TaskRequest struct {
	Task  TaskKind
	Text  string
	Style *StyleConfig
}
