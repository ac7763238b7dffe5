package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"journal-backend/internal/config"
	"journal-backend/internal/extract"
	"journal-backend/internal/llm"
	"journal-backend/internal/metrics"
	"journal-backend/internal/model"
	"journal-backend/internal/prompt"
	"journal-backend/internal/utils"
	"journal-backend/pkg/logger"
)

// DefaultTitlePrefix 未命名会话的标题前缀，首次生成成功后替换为正文开头
const DefaultTitlePrefix = "새 문서"

const titleMaxLen = 30

// Dispatcher 把任务解析成提示词、调用模型、抽取文本并写入编辑历史
type Dispatcher struct {
	registry *prompt.Registry
	client   llm.Client
	models   map[model.ModelTier]string
}

func NewDispatcher(registry *prompt.Registry, client llm.Client, cfg config.ModelConfig) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		client:   client,
		models: map[model.ModelTier]string{
			model.TierPrimary:  cfg.PrimaryModel,
			model.TierAnalysis: cfg.AnalysisModel,
		},
	}
}

// Run 执行一次任务。空白文本或空结果返回 noop，调用失败返回 InvocationError，两者都不修改会话
func (d *Dispatcher) Run(ctx context.Context, sess *model.Session, req model.TaskRequest) (*model.Outcome, error) {
	if strings.TrimSpace(req.Text) == "" {
		return d.noop(sess, req.Task), nil
	}

	res, err := d.registry.Resolve(req.Task, req.Style)
	if err != nil {
		return nil, err
	}
	user, err := res.Build(ctx, req.Text)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	var image []byte
	if sess.Image != nil {
		image = sess.Image.Bytes
	}
	sess.Unlock()

	modelID := d.models[res.Tier]
	env, err := d.client.Invoke(ctx, &llm.Request{
		Task:    req.Task,
		ModelID: modelID,
		System:  res.System,
		User:    user,
		Image:   image,
	})
	if err != nil {
		metrics.ObserveOutcome(string(req.Task), "error")
		var invErr *llm.InvocationError
		if errors.As(err, &invErr) {
			return nil, invErr
		}
		return nil, &llm.InvocationError{Provider: d.client.Name(), Model: modelID, Err: err}
	}

	result, hypothesis := extract.ExtractWithHypothesis(env)
	metrics.ObserveExtraction(hypothesis)
	if hypothesis == extract.Fallback {
		logger.WithFields(logrus.Fields{"task": req.Task, "model": modelID}).
			Warn("unrecognized response envelope, using raw document")
	}
	if result == "" {
		return d.noop(sess, req.Task), nil
	}

	html, err := utils.RenderMarkdown(result)
	if err != nil {
		logger.Warnf("render markdown for %s: %v", req.Task, err)
		html = ""
	}

	sess.Lock()
	defer sess.Unlock()

	if req.Task == model.TaskFullRewrite {
		sess.History.Restart(req.Text, result)
	} else {
		sess.History.Commit(req.Text, result)
	}
	if strings.HasPrefix(sess.Title, DefaultTitlePrefix) && sess.History.Len() == 1 {
		sess.Title = utils.TruncateString(strings.TrimSpace(req.Text), titleMaxLen)
	}
	sess.Touch()
	metrics.ObserveOutcome(string(req.Task), string(model.StatusApplied))

	current := sess.History.Current()
	return &model.Outcome{
		Status:     model.StatusApplied,
		Task:       req.Task,
		Text:       current,
		Result:     result,
		HTML:       html,
		Hypothesis: hypothesis,
		HistoryLen: sess.History.Len(),
		CharCount:  utils.CountChars(current),
		CharLimit:  model.CharLimit,
	}, nil
}

func (d *Dispatcher) noop(sess *model.Session, task model.TaskKind) *model.Outcome {
	metrics.ObserveOutcome(string(task), string(model.StatusNoOp))

	sess.Lock()
	defer sess.Unlock()

	current := sess.History.Current()
	return &model.Outcome{
		Status:     model.StatusNoOp,
		Task:       task,
		Text:       current,
		HistoryLen: sess.History.Len(),
		CharCount:  utils.CountChars(current),
		CharLimit:  model.CharLimit,
	}
}
