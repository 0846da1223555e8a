package gateway

import (
	"context"
	"errors"
)

// Gateway wraps the remote chat-completion capability with the two pipeline
// operations. Each call is a single awaited unit: template selection,
// placeholder substitution, content-part assembly, one remote call, response
// extraction. No retries, no error classification, no partial results.
type Gateway struct {
	chat ChatClient
}

func NewGateway(chat ChatClient) (*Gateway, error) {
	if chat == nil {
		return nil, errors.New("chat client is required")
	}
	return &Gateway{chat: chat}, nil
}

// GenerateSchema sends the paper content (plus any paper page images) through
// the architect template and returns the raw schema text. The schema may be
// empty when the model returned no content.
func (g *Gateway) GenerateSchema(ctx context.Context, paperContent string, cfg ModelConfig, inputImages []string) (GenerateSchemaResult, error) {
	prompt := BuildArchitectPrompt(paperContent)
	raw, err := g.chat.Complete(ctx, cfg, BuildContentParts(prompt, inputImages))
	if err != nil {
		return GenerateSchemaResult{}, err
	}
	return GenerateSchemaResult{Schema: raw}, nil
}

// RenderImage sends the visual schema (plus any reference images) through the
// renderer template and runs the image-detection cascade on the response. A
// response with no recognizable image is a valid result, not an error: the
// caller gets the raw text back instead.
func (g *Gateway) RenderImage(ctx context.Context, visualSchema string, cfg ModelConfig, referenceImages []string) (RenderImageResult, error) {
	prompt := BuildRendererPrompt(visualSchema, len(referenceImages) > 0)
	raw, err := g.chat.Complete(ctx, cfg, BuildContentParts(prompt, referenceImages))
	if err != nil {
		return RenderImageResult{}, err
	}
	return extractImage(raw), nil
}
