package extract

import (
	"github.com/tidwall/gjson"

	"journal-backend/internal/model"
)

// Fallback 所有结构假设都不成立时使用的名字
const Fallback = "raw"

type hypothesis struct {
	name string
	find func(root gjson.Result) (string, bool)
}

// 按优先级排列，第一个成功的生效
var hypotheses = []hypothesis{
	{"output.content[0].text", func(root gjson.Result) (string, bool) {
		return firstText(root.Get("output.content"))
	}},
	{"output.content.text", func(root gjson.Result) (string, bool) {
		return objectText(root.Get("output.content"))
	}},
	{"output.message.content[0].text", func(root gjson.Result) (string, bool) {
		return firstText(root.Get("output.message.content"))
	}},
	{"output.message.text", func(root gjson.Result) (string, bool) {
		return objectText(root.Get("output.message"))
	}},
}

func firstText(list gjson.Result) (string, bool) {
	if !list.IsArray() {
		return "", false
	}
	items := list.Array()
	if len(items) == 0 {
		return "", false
	}
	return objectText(items[0])
}

func objectText(obj gjson.Result) (string, bool) {
	if !obj.IsObject() {
		return "", false
	}
	text := obj.Get("text")
	if !text.Exists() {
		return "", false
	}
	return text.String(), true
}

// Extract 从响应文档中取出生成文本，永不失败
func Extract(env model.Envelope) string {
	text, _ := ExtractWithHypothesis(env)
	return text
}

// ExtractWithHypothesis 同 Extract，另外返回命中的结构假设名
func ExtractWithHypothesis(env model.Envelope) (string, string) {
	if gjson.ValidBytes(env) {
		root := gjson.ParseBytes(env)
		for _, h := range hypotheses {
			if text, ok := try(h, root); ok {
				return text, h.name
			}
		}
	}
	return env.String(), Fallback
}

// try 单个假设内的 panic 不外溢
func try(h hypothesis, root gjson.Result) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			text, ok = "", false
		}
	}()
	return h.find(root)
}
