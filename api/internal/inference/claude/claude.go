package claude

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"pet-mood/api/internal/inference"
	"pet-mood/api/internal/util"
)

const maxTokens = 1024

type Engine struct {
	APIKey string
	Model  string
	client anthropic.Client
}

func New(key, model string, opts ...option.RequestOption) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(key),
		Model:  strings.TrimSpace(model),
		client: anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(key)}, opts...)...),
	}
}

func (e *Engine) Name() string     { return "claude" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Analyze(ctx context.Context, image []byte, mime string) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("ANTHROPIC_API_KEY is empty")
	}
	if len(image) == 0 {
		return "", errors.New("claude analyze: empty image")
	}
	mime = util.PickMIME(mime, image)
	if !util.IsImageMIME(mime) {
		return "", fmt.Errorf("claude analyze: unsupported image type %s", mime)
	}
	if mime == "image/jpg" {
		mime = "image/jpeg"
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(e.Model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(0.2),
		System: []anthropic.TextBlockParam{
			{
				Text: inference.SystemPrompt,
				Type: "text",
			},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mime, base64.StdEncoding.EncodeToString(image)),
				anthropic.NewTextBlock(inference.UserPrompt),
			),
		},
	}

	msg, err := e.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude analyze: %w", err)
	}
	for _, c := range msg.Content {
		if c.Type == "text" && strings.TrimSpace(c.Text) != "" {
			return strings.TrimSpace(c.Text), nil
		}
	}
	return "", inference.ErrEmptyResponse
}
