package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// captureChat records what the gateway hands to the remote capability.
type captureChat struct {
	resp string
	err  error

	gotCfg   ModelConfig
	gotParts []ContentPart
}

func (c *captureChat) Complete(_ context.Context, cfg ModelConfig, parts []ContentPart) (string, error) {
	c.gotCfg = cfg
	c.gotParts = parts
	return c.resp, c.err
}

func TestNewGatewayRequiresClient(t *testing.T) {
	if _, err := NewGateway(nil); err == nil {
		t.Fatal("expected error for nil chat client")
	}
}

func TestGenerateSchemaPassesConfigAndParts(t *testing.T) {
	chat := &captureChat{resp: "the schema"}
	gw, _ := NewGateway(chat)
	cfg := ModelConfig{BaseURL: "https://llm.example", APIKey: "k", ModelName: "m"}
	images := []string{"data:image/png;base64,AAAA", "data:image/png;base64,BBBB"}

	res, err := gw.GenerateSchema(context.Background(), "paper text", cfg, images)
	if err != nil {
		t.Fatal(err)
	}
	if res.Schema != "the schema" {
		t.Errorf("Schema = %q", res.Schema)
	}
	if chat.gotCfg != cfg {
		t.Errorf("config snapshot altered in flight: %+v", chat.gotCfg)
	}
	if len(chat.gotParts) != 3 {
		t.Fatalf("parts = %d, want images + one text", len(chat.gotParts))
	}
	prompt := chat.gotParts[2].Text
	if !strings.Contains(prompt, "paper text") {
		t.Error("paper content missing from prompt")
	}
	if !strings.Contains(prompt, SchemaBeginMarker) {
		t.Error("architect template missing from prompt")
	}
}

func TestGenerateSchemaEmptyResponseIsNotAnError(t *testing.T) {
	gw, _ := NewGateway(&captureChat{resp: ""})
	res, err := gw.GenerateSchema(context.Background(), "x", ModelConfig{}, nil)
	if err != nil {
		t.Fatalf("empty model output must not be an error, got %v", err)
	}
	if res.Schema != "" {
		t.Errorf("Schema = %q, want empty", res.Schema)
	}
}

func TestRenderImageTemplateSelection(t *testing.T) {
	chat := &captureChat{resp: "prose"}
	gw, _ := NewGateway(chat)

	_, err := gw.RenderImage(context.Background(), "S", ModelConfig{}, []string{"data:image/png;base64,AAAA"})
	if err != nil {
		t.Fatal(err)
	}
	prompt := chat.gotParts[len(chat.gotParts)-1].Text
	if !strings.Contains(prompt, "reference images supplied with this message") {
		t.Error("references variant not selected with one reference image")
	}

	_, err = gw.RenderImage(context.Background(), "S", ModelConfig{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	prompt = chat.gotParts[len(chat.gotParts)-1].Text
	if strings.Contains(prompt, "reference images supplied with this message") {
		t.Error("references variant selected without reference images")
	}
}

func TestRenderImageExtractsDataURL(t *testing.T) {
	url := "data:image/png;base64," + mockPixel
	gw, _ := NewGateway(&captureChat{resp: "sure! " + url})
	res, err := gw.RenderImage(context.Background(), "S", ModelConfig{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.ImageURL != url {
		t.Errorf("ImageURL = %q", res.ImageURL)
	}
	if res.Text != "" {
		t.Errorf("Text = %q, want empty", res.Text)
	}
}

func TestRenderImageProseFallsThrough(t *testing.T) {
	gw, _ := NewGateway(&captureChat{resp: "I cannot draw that."})
	res, err := gw.RenderImage(context.Background(), "S", ModelConfig{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", res.ImageURL)
	}
	if res.Text != "I cannot draw that." {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestRemoteFailurePropagatesOpaque(t *testing.T) {
	remoteErr := errors.New("401 unauthorized")
	gw, _ := NewGateway(&captureChat{err: remoteErr})

	if _, err := gw.GenerateSchema(context.Background(), "x", ModelConfig{}, nil); !errors.Is(err, remoteErr) {
		t.Errorf("GenerateSchema error = %v, want the remote error untouched", err)
	}
	if _, err := gw.RenderImage(context.Background(), "x", ModelConfig{}, nil); !errors.Is(err, remoteErr) {
		t.Errorf("RenderImage error = %v, want the remote error untouched", err)
	}
}

func TestMockChatRoundTrip(t *testing.T) {
	gw, _ := NewGateway(MockChat{})
	schema, err := gw.GenerateSchema(context.Background(), "a paper", ModelConfig{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(schema.Schema, SchemaBeginMarker) {
		t.Error("mock schema missing markers")
	}
	img, err := gw.RenderImage(context.Background(), schema.Schema, ModelConfig{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(img.ImageURL, "data:image/png;base64,") {
		t.Errorf("mock render ImageURL = %.40q, want a png data URL", img.ImageURL)
	}
}
