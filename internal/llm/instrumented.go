package llm

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"journal-backend/internal/metrics"
	"journal-backend/internal/model"
	"journal-backend/pkg/logger"
)

// instrumentedClient 给底层客户端加超时、日志和指标，错误统一转成 InvocationError
type instrumentedClient struct {
	wrapped Client
	timeout time.Duration
}

func Instrument(c Client, timeout time.Duration) Client {
	return &instrumentedClient{wrapped: c, timeout: timeout}
}

func (c *instrumentedClient) Name() string {
	return c.wrapped.Name()
}

func (c *instrumentedClient) Invoke(ctx context.Context, req *Request) (model.Envelope, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	fields := logrus.Fields{
		"provider":    c.Name(),
		"task":        req.Task,
		"model":       req.ModelID,
		"prompt_len":  len([]rune(req.User)),
		"image_bytes": len(req.Image),
	}
	logger.WithFields(fields).Debugf("invoking model")

	start := time.Now()
	env, err := c.wrapped.Invoke(ctx, req)
	elapsed := time.Since(start)
	metrics.ObserveInvocation(c.Name(), string(req.Task), elapsed, err)

	fields["elapsed_ms"] = elapsed.Milliseconds()
	if err != nil {
		logger.WithFields(fields).Errorf("model invocation failed: %v", err)

		var invErr *InvocationError
		if errors.As(err, &invErr) {
			return nil, invErr
		}
		return nil, &InvocationError{Provider: c.Name(), Model: req.ModelID, Err: err}
	}

	fields["response_bytes"] = len(env)
	logger.WithFields(fields).Info("model invocation completed")
	return env, nil
}
