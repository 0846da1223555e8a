package gateway

import (
	"context"
	"strings"
)

// mockPixel is a 1x1 transparent PNG, base64.
const mockPixel = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR4nGNgYAAAAAMAASsJTYQAAAAASUVORK5CYII="

// MockChat 一个简单的占位实现，便于本地调试，不调用外部模型。
// Architect prompts get a tiny canned schema, renderer prompts get a one-pixel
// PNG data URL.
type MockChat struct{}

func (MockChat) Complete(_ context.Context, _ ModelConfig, parts []ContentPart) (string, error) {
	var prompt string
	for _, p := range parts {
		if p.Kind == PartText {
			prompt = p.Text
		}
	}

	if strings.Contains(prompt, "scientific figure architect") {
		var sb strings.Builder
		sb.WriteString(SchemaBeginMarker)
		sb.WriteString("\n1. Title: Mock Diagram\n")
		sb.WriteString("2. Overall Layout: single row, left to right\n")
		sb.WriteString("3. Zones: Input | Method | Result\n")
		sb.WriteString("4. Visual Elements: three rounded boxes\n")
		sb.WriteString("5. Connections: Input -> Method -> Result\n")
		sb.WriteString("6. Color Palette: #1f77b4 primary, #ffffff background\n")
		sb.WriteString("7. Key Text Labels: Input, Method, Result\n")
		sb.WriteString(SchemaEndMarker)
		return sb.String(), nil
	}
	return "data:image/png;base64," + mockPixel, nil
}
