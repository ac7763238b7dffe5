package utils

import (
	"bytes"
	"io"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"journal-backend/pkg/logger"
)

// 图片 base64 可能有几 MB，日志里截断
const maxLoggedBody = 4096

var (
	sensitiveHeaders = []string{"authorization", "x-api-key", "x-auth-token", "cookie", "x-amz-security-token"}

	sensitiveFieldPattern = regexp.MustCompile(`"(api_key|apiKey|password|secret|token)"\s*:\s*"[^"]*"`)
)

// DebugTransport 记录 POST 请求的请求头和请求体，敏感字段脱敏
type DebugTransport struct {
	base  http.RoundTripper
	label string
}

func NewDebugTransport(base http.RoundTripper, label string) *DebugTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &DebugTransport{base: base, label: label}
}

func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method == http.MethodPost {
		t.logRequest(req)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		logger.WithFields(logrus.Fields{"transport": t.label, "url": req.URL.String()}).
			Errorf("request failed: %v", err)
	}
	return resp, err
}

func (t *DebugTransport) logRequest(req *http.Request) {
	headers := make(map[string]string, len(req.Header))
	for name, values := range req.Header {
		if isSensitiveHeader(name) {
			headers[name] = "[REDACTED]"
			continue
		}
		headers[name] = strings.Join(values, ", ")
	}

	fields := logrus.Fields{
		"transport": t.label,
		"method":    req.Method,
		"url":       req.URL.String(),
		"headers":   headers,
	}

	if req.Body != nil && req.Body != http.NoBody {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			logger.WithFields(fields).Errorf("read request body: %v", err)
			return
		}
		// 还原请求体，避免影响实际请求
		req.Body = io.NopCloser(bytes.NewReader(body))
		fields["body_size"] = len(body)
		fields["body"] = SanitizeBody(body)
	}

	logger.WithFields(fields).Info("outgoing model request")
}

// SanitizeBody 隐藏 JSON 中的敏感字段值并截断过长内容
func SanitizeBody(body []byte) string {
	if len(body) == 0 {
		return "(empty)"
	}
	s := sensitiveFieldPattern.ReplaceAllString(string(body), `"$1": "[REDACTED]"`)
	if len(s) > maxLoggedBody {
		cut := maxLoggedBody
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "...(truncated)"
	}
	return s
}

func isSensitiveHeader(name string) bool {
	for _, h := range sensitiveHeaders {
		if strings.EqualFold(name, h) {
			return true
		}
	}
	return false
}
