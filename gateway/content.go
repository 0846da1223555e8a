package gateway

// BuildContentParts assembles the ordered content-part sequence for a single
// user message: each supplied image becomes one image part, in input order,
// followed by exactly one text part holding the full prompt, placed last.
// With no images the sequence is the single text part.
//
// 图片在前、指令文本最后，这个顺序是契约的一部分，不能调整。
func BuildContentParts(prompt string, images []string) []ContentPart {
	parts := make([]ContentPart, 0, len(images)+1)
	for _, url := range images {
		parts = append(parts, ContentPart{Kind: PartImage, URL: url})
	}
	parts = append(parts, ContentPart{Kind: PartText, Text: prompt})
	return parts
}
