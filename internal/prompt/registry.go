package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"journal-backend/internal/model"
)

// Registry 任务到提示词模板的映射，创建后只读
type Registry struct {
	templates map[model.TaskKind]prompt.ChatTemplate
}

func NewRegistry() *Registry {
	templates := make(map[model.TaskKind]prompt.ChatTemplate, len(taskSpecs))
	for task, spec := range taskSpecs {
		templates[task] = prompt.FromMessages(schema.FString,
			schema.SystemMessage(spec.system),
			schema.UserMessage(spec.template),
		)
	}
	return &Registry{templates: templates}
}

// Resolution 一次解析的结果，Build 把文本填入用户提示词
type Resolution struct {
	Task   model.TaskKind
	Tier   model.ModelTier
	System string

	template prompt.ChatTemplate
	vars     map[string]any
}

// Build 渲染模板，返回用户提示词。text 原样插入，不做转义
func (r *Resolution) Build(ctx context.Context, text string) (string, error) {
	vars := make(map[string]any, len(r.vars)+1)
	for k, v := range r.vars {
		vars[k] = v
	}
	vars["text"] = text

	msgs, err := r.template.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("format %s prompt: %w", r.Task, err)
	}
	for _, msg := range msgs {
		if msg.Role == schema.User {
			return msg.Content, nil
		}
	}
	return "", fmt.Errorf("format %s prompt: no user message", r.Task)
}

// Resolve 按任务取系统提示词和模板。style 只对 rewrite 生效，且必须存在
func (r *Registry) Resolve(task model.TaskKind, style *model.StyleConfig) (*Resolution, error) {
	spec, ok := taskSpecs[task]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownTask, task)
	}

	res := &Resolution{
		Task:     task,
		Tier:     spec.tier,
		System:   spec.system,
		template: r.templates[task],
		vars:     map[string]any{},
	}

	if task != model.TaskRewrite {
		return res, nil
	}

	if style == nil {
		return nil, &UnknownStyleError{}
	}
	guide, ok := styleGuides[style.Style]
	if !ok {
		return nil, &UnknownStyleError{Style: style.Style}
	}
	conditions, err := conditionsBlock(style)
	if err != nil {
		return nil, err
	}

	emoji := ""
	if style.UseEmoji {
		emoji = EmojiInstruction
	}
	res.vars["emoji_instruction"] = emoji
	res.vars["style"] = style.Style
	res.vars["style_guide"] = guide
	res.vars["conditions"] = conditions
	return res, nil
}

// conditionsBlock 拼接非空的语气、读者、长度条件
func conditionsBlock(style *model.StyleConfig) (string, error) {
	options := []struct {
		field, label, value string
		vocab               []string
	}{
		{"tone", "어조", style.Tone, model.Tones},
		{"audience", "대상 독자", style.Audience, model.Audiences},
		{"length", "분량", style.Length, model.Lengths},
	}

	var lines []string
	for _, opt := range options {
		if opt.value == "" {
			continue
		}
		if !contains(opt.vocab, opt.value) {
			return "", &UnknownOptionError{Field: opt.field, Value: opt.value}
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", opt.label, opt.value))
	}
	if len(lines) == 0 {
		return "", nil
	}
	return "\n\n[작성 조건]\n" + strings.Join(lines, "\n"), nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Styles 风格表中的全部风格，顺序与词表一致
func Styles() []string {
	out := make([]string, 0, len(model.Styles))
	for _, s := range model.Styles {
		if _, ok := styleGuides[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
