package model

// Envelope 模型端点返回的原始 JSON 文档，结构随模型族变化
type Envelope []byte

func (e Envelope) String() string {
	return string(e)
}
