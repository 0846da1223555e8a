package gateway

import "strings"

// 三个固定模板：architect 负责把论文内容转成视觉 schema，
// renderer 负责把 schema 渲染成图。占位符只替换第一次出现。
const (
	paperContentPlaceholder = "{{PAPER_CONTENT}}"
	visualSchemaPlaceholder = "{{VISUAL_SCHEMA}}"
)

// SchemaBeginMarker and SchemaEndMarker delimit the schema block in the model
// output. Downstream consumers parse on these, so the templates must carry them
// byte-for-byte.
const (
	SchemaBeginMarker = "=== SCHEMA START ==="
	SchemaEndMarker   = "=== SCHEMA END ==="
)

const architectTemplate = `You are a scientific figure architect. Read the paper content below and design a visual schema for a single summary diagram of the work.

Paper content:
{{PAPER_CONTENT}}

Produce the schema in exactly the following sections, in this order:
1. Title: the diagram headline.
2. Overall Layout: the global arrangement (rows, columns, flow direction).
3. Zones: the named regions of the diagram and what each contains.
4. Visual Elements: the shapes, icons, and plots to draw in each zone.
5. Connections: arrows and links between elements, with direction and meaning.
6. Color Palette: a small set of hex colors with the role of each.
7. Key Text Labels: the exact short strings to letter onto the diagram.

Write the whole schema between the literal markers below and nothing outside them.
=== SCHEMA START ===
(schema goes here)
=== SCHEMA END ===`

const rendererTemplate = `You are a diagram illustrator. Render one finished diagram image from the visual schema below.

Visual schema:
{{VISUAL_SCHEMA}}

Follow the schema's layout, zones, connections, palette, and labels faithfully. Choose a clean, self-consistent visual style: flat vector shapes, generous whitespace, crisp sans-serif lettering, suitable for a publication figure. Output the image.`

const rendererWithReferencesTemplate = `You are a diagram illustrator. Render one finished diagram image from the visual schema below.

Visual schema:
{{VISUAL_SCHEMA}}

Match the color palette and visual style of the reference images supplied with this message. Follow the schema's layout, zones, connections, palette, and labels faithfully, with flat vector shapes, generous whitespace, and crisp sans-serif lettering, suitable for a publication figure. Output the image.`

// BuildArchitectPrompt substitutes the paper content into the architect
// template. Only the first placeholder occurrence is replaced; every other
// byte of the template passes through untouched.
func BuildArchitectPrompt(paperContent string) string {
	return strings.Replace(architectTemplate, paperContentPlaceholder, paperContent, 1)
}

// BuildRendererPrompt substitutes the visual schema into the renderer
// template. Template selection is a pure function of reference-image presence.
func BuildRendererPrompt(visualSchema string, hasReferences bool) string {
	tmpl := rendererTemplate
	if hasReferences {
		tmpl = rendererWithReferencesTemplate
	}
	return strings.Replace(tmpl, visualSchemaPlaceholder, visualSchema, 1)
}
