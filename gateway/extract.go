package gateway

import (
	"regexp"
	"strings"
)

// The remote model's response format is not fixed by the API: it may be
// prose, it may embed a data-URL image literal, or it may be a raw base64
// blob. The cascade below sniffs the three cases in a fixed order.

// dataURLPattern finds an embedded data-URL image literal anywhere in the
// text. First match wins.
var dataURLPattern = regexp.MustCompile(`data:image/[a-zA-Z0-9.+-]+;base64,[A-Za-z0-9+/=]+`)

// base64TextPattern matches text made entirely of the base64 alphabet,
// ignoring internal whitespace.
var base64TextPattern = regexp.MustCompile(`^[A-Za-z0-9+/=\s]+$`)

// rawBase64MinLength is the boundary between "treat as prose" and "treat as a
// raw image payload". Short base64-looking strings are far more likely to be
// coincidental text.
const rawBase64MinLength = 1000

const pngDataURLPrefix = "data:image/png;base64,"

// extractImage applies the three-stage image-detection cascade to the raw
// extracted response text. An empty input bypasses the cascade entirely and
// falls to the final branch.
func extractImage(raw string) RenderImageResult {
	if raw == "" {
		return RenderImageResult{}
	}
	if m := dataURLPattern.FindString(raw); m != "" {
		return RenderImageResult{ImageURL: m}
	}
	if len(raw) > rawBase64MinLength && base64TextPattern.MatchString(raw) {
		return RenderImageResult{ImageURL: pngDataURLPrefix + strings.TrimSpace(raw)}
	}
	return RenderImageResult{Text: raw}
}
