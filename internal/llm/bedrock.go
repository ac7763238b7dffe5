package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/pkg/errors"

	"journal-backend/internal/config"
	"journal-backend/internal/model"
	"journal-backend/internal/utils"
)

// ConverseAPI bedrockruntime.Client 中用到的部分
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type BedrockClient struct {
	api ConverseAPI
}

// NewBedrockClient 凭证优先取配置，未配置时走 AWS 默认凭证链。
// HTTP 客户端由 SDK 构建，AWS_CA_BUNDLE 等设置才能生效；debug 时在外层记录请求。
func NewBedrockClient(ctx context.Context, cfg config.BedrockConfig, timeout time.Duration, debug bool) (*BedrockClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	if timeout > 0 {
		opts = append(opts, awsconfig.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(timeout)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	api := bedrockruntime.NewFromConfig(awsCfg, func(o *bedrockruntime.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if debug && o.HTTPClient != nil {
			o.HTTPClient = &http.Client{
				Transport: utils.NewDebugTransport(doerTransport{client: o.HTTPClient}, "bedrock"),
			}
		}
	})
	return NewBedrockClientWithAPI(api), nil
}

// doerTransport 把 SDK 的 HTTPClient 适配为 RoundTripper
type doerTransport struct {
	client bedrockruntime.HTTPClient
}

func (t doerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.client.Do(req)
}

func NewBedrockClientWithAPI(api ConverseAPI) *BedrockClient {
	return &BedrockClient{api: api}
}

func (c *BedrockClient) Name() string {
	return "bedrock"
}

func (c *BedrockClient) Invoke(ctx context.Context, req *Request) (model.Envelope, error) {
	out, err := c.api.Converse(ctx, converseInput(req))
	if err != nil {
		return nil, err
	}
	return converseEnvelope(out)
}

func converseInput(req *Request) *bedrockruntime.ConverseInput {
	content := []types.ContentBlock{
		&types.ContentBlockMemberText{Value: req.User},
	}
	if len(req.Image) > 0 {
		content = append(content, &types.ContentBlockMemberImage{
			Value: types.ImageBlock{
				Format: types.ImageFormatJpeg,
				Source: &types.ImageSourceMemberBytes{Value: req.Image},
			},
		})
	}

	return &bedrockruntime.ConverseInput{
		ModelId: aws.String(req.ModelID),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		},
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: content,
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(MaxTokens),
			Temperature: aws.Float32(Temperature),
		},
	}
}

// converseEnvelope 把类型化的 Converse 输出还原成 JSON 响应文档，非文本块不带 text 字段
func converseEnvelope(out *bedrockruntime.ConverseOutput) (model.Envelope, error) {
	if out == nil {
		return nil, errors.New("empty converse output")
	}

	doc := &converseDocument{StopReason: string(out.StopReason)}
	if msg, ok := out.Output.(*types.ConverseOutputMemberMessage); ok {
		doc.Output.Message.Role = string(msg.Value.Role)
		for _, block := range msg.Value.Content {
			switch b := block.(type) {
			case *types.ContentBlockMemberText:
				doc.Output.Message.Content = append(doc.Output.Message.Content, textBlock(b.Value))
			default:
				doc.Output.Message.Content = append(doc.Output.Message.Content, map[string]any{
					"type": fmt.Sprintf("%T", b),
				})
			}
		}
	}
	if out.Usage != nil {
		doc.Usage = &tokenUsage{
			InputTokens:  int(aws.ToInt32(out.Usage.InputTokens)),
			OutputTokens: int(aws.ToInt32(out.Usage.OutputTokens)),
			TotalTokens:  int(aws.ToInt32(out.Usage.TotalTokens)),
		}
	}
	return encodeDocument(doc)
}
