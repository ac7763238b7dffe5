package model

import (
	"errors"
	"fmt"
)

// TaskKind 生成任务类型
type TaskKind string

const (
	TaskRewrite      TaskKind = "rewrite"
	TaskFactCheck    TaskKind = "fact_check"
	TaskDataAnalysis TaskKind = "data_analysis"
	TaskGrammarCheck TaskKind = "grammar_check"
	TaskSeoTitle     TaskKind = "seo_title"
	TaskRelatedPivot TaskKind = "related_pivot"
	TaskFullRewrite  TaskKind = "full_rewrite"
)

var ErrUnknownTask = errors.New("unknown task")

var allTasks = []TaskKind{
	TaskRewrite,
	TaskFactCheck,
	TaskDataAnalysis,
	TaskGrammarCheck,
	TaskSeoTitle,
	TaskRelatedPivot,
	TaskFullRewrite,
}

// AllTasks 按固定顺序返回全部任务
func AllTasks() []TaskKind {
	out := make([]TaskKind, len(allTasks))
	copy(out, allTasks)
	return out
}

func ParseTaskKind(s string) (TaskKind, error) {
	for _, t := range allTasks {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTask, s)
}

// ModelTier 决定任务走哪一个模型 ID
type ModelTier string

const (
	TierPrimary  ModelTier = "primary"
	TierAnalysis ModelTier = "analysis"
)

// StyleConfig 只对 rewrite 生效。Tone/Audience/Length 为空时不写入提示词。
type StyleConfig struct {
	Style    string `json:"style"`
	Tone     string `json:"tone,omitempty"`
	Audience string `json:"audience,omitempty"`
	Length   string `json:"length,omitempty"`
	UseEmoji bool   `json:"use_emoji"`
}

var (
	Styles    = []string{"권위있는 기사체", "르포 기사체", "세련된 뉴스레터체", "AXIOS 기사체"}
	Tones     = []string{"경어체", "반말체", "중립적"}
	Audiences = []string{"일반 대중", "전문가", "청소년"}
	Lengths   = []string{"1000자", "2000자", "3000자"}
)

// CharLimit 编辑区字数上限，仅用于展示
const CharLimit = 3000
