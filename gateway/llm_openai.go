package gateway

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIChat implements ChatClient using the official openai-go SDK (chat
// completions). The config is a per-call snapshot, so the SDK client is built
// per call; concurrent calls share nothing.
type OpenAIChat struct{}

func (OpenAIChat) Complete(ctx context.Context, cfg ModelConfig, parts []ContentPart) (string, error) {
	if cfg.APIKey == "" {
		return "", errors.New("api key missing; configure the model before calling")
	}
	if cfg.ModelName == "" {
		return "", errors.New("model name is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	content := make([]openai.ChatCompletionContentPartUnionParam, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case PartImage:
			content = append(content, openai.ImageContentPart(
				openai.ChatCompletionContentPartImageImageURLParam{URL: p.URL}))
		default:
			content = append(content, openai.TextContentPart(p.Text))
		}
	}

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(cfg.ModelName),
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(content)},
		Temperature: openai.Float(samplingTemperature),
		MaxTokens:   openai.Int(maxOutputTokens),
	})
	if err != nil {
		return "", err
	}
	// Empty content is a valid outcome, never an error.
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
