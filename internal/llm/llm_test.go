package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-backend/internal/config"
	"journal-backend/internal/extract"
	"journal-backend/internal/model"
	"journal-backend/pkg/logger"
)

func sampleRequest(image []byte) *Request {
	return &Request{
		Task:    model.TaskGrammarCheck,
		ModelID: "analysis-model",
		System:  "system prompt",
		User:    "그는 학교에 갔다요.",
		Image:   image,
	}
}

type fakeConverse struct {
	input *bedrockruntime.ConverseInput
	out   *bedrockruntime.ConverseOutput
	err   error
}

func (f *fakeConverse) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = params
	return f.out, f.err
}

func TestBedrockInvoke(t *testing.T) {
	fake := &fakeConverse{out: &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{Value: types.Message{
			Role: types.ConversationRoleAssistant,
			Content: []types.ContentBlock{
				&types.ContentBlockMemberText{Value: "그는 학교에 갔다."},
			},
		}},
		StopReason: types.StopReasonEndTurn,
		Usage: &types.TokenUsage{
			InputTokens:  aws.Int32(12),
			OutputTokens: aws.Int32(8),
			TotalTokens:  aws.Int32(20),
		},
	}}

	env, err := NewBedrockClientWithAPI(fake).Invoke(context.Background(), sampleRequest([]byte{0xff, 0xd8}))
	require.NoError(t, err)

	in := fake.input
	require.NotNil(t, in)
	assert.Equal(t, "analysis-model", aws.ToString(in.ModelId))
	require.Len(t, in.System, 1)
	assert.Equal(t, "system prompt", in.System[0].(*types.SystemContentBlockMemberText).Value)
	assert.Equal(t, int32(MaxTokens), aws.ToInt32(in.InferenceConfig.MaxTokens))
	assert.Equal(t, Temperature, aws.ToFloat32(in.InferenceConfig.Temperature))

	require.Len(t, in.Messages, 1)
	content := in.Messages[0].Content
	require.Len(t, content, 2)
	assert.Equal(t, "그는 학교에 갔다요.", content[0].(*types.ContentBlockMemberText).Value)
	img := content[1].(*types.ContentBlockMemberImage).Value
	assert.Equal(t, types.ImageFormatJpeg, img.Format)
	assert.Equal(t, []byte{0xff, 0xd8}, img.Source.(*types.ImageSourceMemberBytes).Value)

	text, hyp := extract.ExtractWithHypothesis(env)
	assert.Equal(t, "그는 학교에 갔다.", text)
	assert.Equal(t, "output.message.content[0].text", hyp)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(env, &doc))
	assert.Equal(t, "end_turn", doc["stopReason"])
}

func TestBedrockInvokeWithoutImage(t *testing.T) {
	fake := &fakeConverse{out: &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{Value: types.Message{
			Role:    types.ConversationRoleAssistant,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: "ok"}},
		}},
	}}

	_, err := NewBedrockClientWithAPI(fake).Invoke(context.Background(), sampleRequest(nil))
	require.NoError(t, err)
	assert.Len(t, fake.input.Messages[0].Content, 1)
}

func TestBedrockNonTextBlockFallsBack(t *testing.T) {
	fake := &fakeConverse{out: &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{Value: types.Message{
			Role: types.ConversationRoleAssistant,
			Content: []types.ContentBlock{&types.ContentBlockMemberImage{Value: types.ImageBlock{
				Format: types.ImageFormatPng,
			}}},
		}},
	}}

	env, err := NewBedrockClientWithAPI(fake).Invoke(context.Background(), sampleRequest(nil))
	require.NoError(t, err)

	text, hyp := extract.ExtractWithHypothesis(env)
	assert.Equal(t, extract.Fallback, hyp)
	assert.Equal(t, env.String(), text)
}

func TestBedrockError(t *testing.T) {
	fake := &fakeConverse{err: errors.New("AccessDeniedException")}
	_, err := NewBedrockClientWithAPI(fake).Invoke(context.Background(), sampleRequest(nil))
	assert.EqualError(t, err, "AccessDeniedException")
}

func TestOpenAIInvoke(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "analysis-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "교정 결과"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}, srv.Client())
	env, err := client.Invoke(context.Background(), sampleRequest([]byte("jpeg")))
	require.NoError(t, err)

	assert.Equal(t, "analysis-model", body["model"])
	assert.EqualValues(t, MaxTokens, body["max_tokens"])
	assert.InDelta(t, 0.3, body["temperature"], 1e-6)

	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	user := messages[1].(map[string]any)
	parts := user["content"].([]any)
	require.Len(t, parts, 2)
	imagePart := parts[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/jpeg;base64,anBlZw==", imagePart["url"])

	assert.Equal(t, "교정 결과", extract.Extract(env))
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}, nil)
	_, err := client.Invoke(context.Background(), sampleRequest(nil))
	assert.Error(t, err)
}

type fakeChatModel struct {
	messages []*schema.Message
	options  *einoModel.Options
	reply    *schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	f.messages = input
	f.options = einoModel.GetCommonOptions(&einoModel.Options{}, opts...)
	return f.reply, nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestEinoInvoke(t *testing.T) {
	fake := &fakeChatModel{reply: &schema.Message{
		Role:    schema.Assistant,
		Content: "분석 결과",
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: "stop",
			Usage:        &schema.TokenUsage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7},
		},
	}}

	env, err := NewEinoClient("qwen", fake).Invoke(context.Background(), sampleRequest([]byte("jpeg")))
	require.NoError(t, err)
	assert.Equal(t, "분석 결과", extract.Extract(env))

	require.Len(t, fake.messages, 2)
	assert.Equal(t, schema.System, fake.messages[0].Role)
	assert.Equal(t, "system prompt", fake.messages[0].Content)
	parts := fake.messages[1].MultiContent
	require.Len(t, parts, 2)
	assert.Equal(t, "그는 학교에 갔다요.", parts[0].Text)
	assert.Equal(t, "data:image/jpeg;base64,anBlZw==", parts[1].ImageURL.URL)

	require.NotNil(t, fake.options.Model)
	assert.Equal(t, "analysis-model", *fake.options.Model)
	assert.Equal(t, MaxTokens, *fake.options.MaxTokens)
	assert.Equal(t, Temperature, *fake.options.Temperature)
}

func TestEinoNilReply(t *testing.T) {
	_, err := NewEinoClient("doubao", &fakeChatModel{}).Invoke(context.Background(), sampleRequest(nil))
	assert.Error(t, err)
}

type funcClient func(ctx context.Context, req *Request) (model.Envelope, error)

func (f funcClient) Name() string { return "func" }

func (f funcClient) Invoke(ctx context.Context, req *Request) (model.Envelope, error) {
	return f(ctx, req)
}

func TestInstrumentWrapsErrors(t *testing.T) {
	failing := funcClient(func(context.Context, *Request) (model.Envelope, error) {
		return nil, errors.New("connection refused")
	})

	_, err := Instrument(failing, time.Second).Invoke(context.Background(), sampleRequest(nil))
	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "func", invErr.Provider)
	assert.Equal(t, "analysis-model", invErr.Model)
	assert.Equal(t, "모델 호출 중 오류 발생: connection refused", invErr.UserMessage())
}

func TestInstrumentTimeout(t *testing.T) {
	slow := funcClient(func(ctx context.Context, _ *Request) (model.Envelope, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := Instrument(slow, 20*time.Millisecond).Invoke(context.Background(), sampleRequest(nil))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMockClient(t *testing.T) {
	env, err := Instrument(MockClient{}, 0).Invoke(context.Background(), sampleRequest([]byte("abc")))
	require.NoError(t, err)

	text := extract.Extract(env)
	assert.Contains(t, text, "grammar_check")
	assert.Contains(t, text, "그는 학교에 갔다요.")
	assert.Contains(t, text, "3 bytes")
}

// clearAWSEnv 屏蔽宿主机上的 AWS 配置
func clearAWSEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AWS_CA_BUNDLE", "")
	t.Setenv("AWS_PROFILE", "")
}

func TestNewClient(t *testing.T) {
	clearAWSEnv(t)
	cfg := &config.Config{Model: config.ModelConfig{Provider: "mock", Timeout: time.Second}}
	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "mock", client.Name())

	cfg.Model.Provider = "bedrock"
	cfg.Bedrock = config.BedrockConfig{Region: "us-east-1", AccessKeyID: "AKID", SecretAccessKey: "SECRET"}
	client, err = NewClient(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "bedrock", client.Name())

	cfg.Model.Provider = "openai"
	client, err = NewClient(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Name())

	cfg.Model.Provider = "nova"
	_, err = NewClient(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewBedrockClientWithCABundle(t *testing.T) {
	clearAWSEnv(t)

	srv := httptest.NewTLSServer(http.NotFoundHandler())
	defer srv.Close()
	bundle := filepath.Join(t.TempDir(), "ca.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, os.WriteFile(bundle, certPEM, 0o600))
	t.Setenv("AWS_CA_BUNDLE", bundle)

	cfg := config.BedrockConfig{Region: "us-east-1", AccessKeyID: "AKID", SecretAccessKey: "SECRET"}
	for _, debug := range []bool{false, true} {
		client, err := NewBedrockClient(context.Background(), cfg, time.Second, debug)
		require.NoError(t, err)
		assert.Equal(t, "bedrock", client.Name())
	}

	client, err := NewClient(context.Background(), &config.Config{
		Model:   config.ModelConfig{Provider: "bedrock", Timeout: time.Second},
		Bedrock: cfg,
	})
	require.NoError(t, err)
	assert.Equal(t, "bedrock", client.Name())
}

func TestBedrockDebugRequestLogging(t *testing.T) {
	clearAWSEnv(t)

	var logs bytes.Buffer
	logger.SetOutput(&logs)
	defer logger.SetOutput(io.Discard)

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"output":{"message":{"role":"assistant","content":[{"text":"교정 결과"}]}},"stopReason":"end_turn","usage":{"inputTokens":3,"outputTokens":2,"totalTokens":5}}`)
	}))
	defer srv.Close()

	cfg := config.BedrockConfig{Region: "us-east-1", Endpoint: srv.URL, AccessKeyID: "AKID", SecretAccessKey: "SECRET"}
	client, err := NewBedrockClient(context.Background(), cfg, 5*time.Second, true)
	require.NoError(t, err)

	env, err := client.Invoke(context.Background(), sampleRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "교정 결과", extract.Extract(env))
	assert.True(t, strings.HasSuffix(path, "/converse"), path)

	assert.Contains(t, logs.String(), "outgoing model request")
	assert.Contains(t, logs.String(), "bedrock")
	assert.NotContains(t, logs.String(), "SECRET")
}
