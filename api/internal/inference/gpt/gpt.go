package gpt

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"pet-mood/api/internal/inference"
	"pet-mood/api/internal/util"
)

type Engine struct {
	APIKey string
	Model  string
	client *openai.Client
}

// New accepts extra request options (base URL, retries) mainly for tests
// and OpenAI-compatible gateways.
func New(key, model string, opts ...option.RequestOption) *Engine {
	cli := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(key)}, opts...)...)
	return &Engine{
		APIKey: strings.TrimSpace(key),
		Model:  strings.TrimSpace(model),
		client: &cli,
	}
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Analyze(ctx context.Context, image []byte, mime string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("OPENAI_API_KEY is empty")
	}
	if len(image) == 0 {
		return "", errors.New("gpt analyze: empty image")
	}
	mime = util.PickMIME(mime, image)
	if !util.IsImageMIME(mime) {
		return "", fmt.Errorf("gpt analyze: unsupported image type %s", mime)
	}
	dataURL := util.MakeDataURL(mime, base64.StdEncoding.EncodeToString(image))

	params := openai.ChatCompletionNewParams{
		Model:       e.Model,
		Temperature: openai.Float(0.2),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(inference.SystemPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(inference.UserPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL:    dataURL,
					Detail: "auto",
				}),
			}),
		},
	}

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("gpt analyze: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", inference.ErrEmptyResponse
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", inference.ErrEmptyResponse
	}
	return out, nil
}
