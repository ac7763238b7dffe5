package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"journal-backend/internal/model"
)

func TestExtractShapes(t *testing.T) {
	cases := []struct {
		name       string
		envelope   string
		want       string
		hypothesis string
	}{
		{
			name:       "content list",
			envelope:   `{"output":{"content":[{"text":"첫 번째"},{"text":"두 번째"}]}}`,
			want:       "첫 번째",
			hypothesis: "output.content[0].text",
		},
		{
			name:       "content object",
			envelope:   `{"output":{"content":{"text":"객체 본문"}}}`,
			want:       "객체 본문",
			hypothesis: "output.content.text",
		},
		{
			name:       "message content list",
			envelope:   `{"output":{"message":{"role":"assistant","content":[{"text":"수정된 문장입니다."}]}},"stopReason":"end_turn"}`,
			want:       "수정된 문장입니다.",
			hypothesis: "output.message.content[0].text",
		},
		{
			name:       "message text",
			envelope:   `{"output":{"message":{"text":"직접 텍스트"}}}`,
			want:       "직접 텍스트",
			hypothesis: "output.message.text",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, hyp := ExtractWithHypothesis(model.Envelope(tc.envelope))
			assert.Equal(t, tc.want, text)
			assert.Equal(t, tc.hypothesis, hyp)
		})
	}
}

func TestExtractFallsBackToRawEnvelope(t *testing.T) {
	raw := `{"output":{"message":{"content":[{"image":{"format":"png"}}]}},"foo":1}`
	text, hyp := ExtractWithHypothesis(model.Envelope(raw))
	assert.Equal(t, raw, text)
	assert.Equal(t, Fallback, hyp)
}

func TestExtractInvalidJSON(t *testing.T) {
	raw := "not json at all {"
	assert.NotPanics(t, func() {
		assert.Equal(t, raw, Extract(model.Envelope(raw)))
	})
	assert.Equal(t, "", Extract(nil))
}

func TestExtractOrderWinsOverLaterShapes(t *testing.T) {
	raw := `{"output":{"content":[{"text":"A"}],"message":{"content":[{"text":"B"}]}}}`
	assert.Equal(t, "A", Extract(model.Envelope(raw)))
}

func TestExtractSkipsStructuralMismatch(t *testing.T) {
	// content 是字符串，第一、二个假设都不成立
	raw := `{"output":{"content":"plain","message":{"text":"D"}}}`
	text, hyp := ExtractWithHypothesis(model.Envelope(raw))
	assert.Equal(t, "D", text)
	assert.Equal(t, "output.message.text", hyp)
}

func TestExtractEmptyList(t *testing.T) {
	raw := `{"output":{"content":[],"message":{"content":[{"text":"C"}]}}}`
	assert.Equal(t, "C", Extract(model.Envelope(raw)))
}

func TestTryRecoversPanic(t *testing.T) {
	h := hypothesis{name: "boom", find: func(gjson.Result) (string, bool) {
		panic("boom")
	}}
	text, ok := try(h, gjson.Parse(`{}`))
	assert.False(t, ok)
	assert.Empty(t, text)
}
