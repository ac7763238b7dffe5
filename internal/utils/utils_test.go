package utils

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-backend/pkg/logger"
)

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# 제목\n\n- 항목 1\n- 항목 2\n\n<script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>제목</h1>")
	assert.Contains(t, out, "<li>항목 1</li>")
	assert.NotContains(t, out, "<script>")

	out, err = RenderMarkdown("   ")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCountAndTruncate(t *testing.T) {
	assert.Equal(t, 5, CountChars("안녕하세요"))
	assert.Equal(t, "안녕...", TruncateString("안녕하세요", 2))
	assert.Equal(t, "짧은", TruncateString("짧은", 30))
}

func TestSanitizeBody(t *testing.T) {
	out := SanitizeBody([]byte(`{"model":"m","api_key":"sk-123","messages":[]}`))
	assert.Contains(t, out, `"api_key": "[REDACTED]"`)
	assert.NotContains(t, out, "sk-123")

	assert.Equal(t, "(empty)", SanitizeBody(nil))

	long := SanitizeBody(bytes.Repeat([]byte("a"), maxLoggedBody+10))
	assert.True(t, strings.HasSuffix(long, "...(truncated)"))

	// 4096 不是 3 的倍数，按字节截断会切开韩文字符
	korean := SanitizeBody([]byte(strings.Repeat("가", maxLoggedBody)))
	assert.True(t, utf8.ValidString(korean))
	assert.True(t, strings.HasPrefix(korean, strings.Repeat("가", maxLoggedBody/3)))
	assert.True(t, strings.HasSuffix(korean, "...(truncated)"))
}

func TestDebugTransportPreservesBody(t *testing.T) {
	var logs bytes.Buffer
	logger.SetOutput(&logs)
	defer logger.SetOutput(io.Discard)

	var received string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewHTTPClient(5*time.Second, true)
	req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(`{"prompt":"안녕"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret-token")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, `{"prompt":"안녕"}`, received)
	assert.Contains(t, logs.String(), "outgoing model request")
	assert.NotContains(t, logs.String(), "secret-token")
}
