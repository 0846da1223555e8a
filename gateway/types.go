package gateway

// ModelConfig is an immutable per-call snapshot of one model endpoint. Two
// independent instances exist in practice: the logic ("architect") model and
// the vision ("renderer") model. The key is supplied by the user (BYOK) and
// never validated against the other config.
type ModelConfig struct {
	BaseURL   string `json:"base_url,omitempty"`
	APIKey    string `json:"api_key,omitempty"`
	ModelName string `json:"model_name,omitempty"`
}

// PartKind discriminates the two content part variants.
type PartKind string

const (
	PartText  PartKind = "text"
	PartImage PartKind = "image"
)

// ContentPart is one atomic unit (image or text) of a single chat message
// payload. Image URLs are opaque strings (data URLs or remote URLs), never
// decoded here.
type ContentPart struct {
	Kind PartKind `json:"kind"`
	Text string   `json:"text,omitempty"`
	URL  string   `json:"url,omitempty"`
}

// GenerateSchemaResult carries the raw schema text. It may be the empty
// string when the model returned no content.
type GenerateSchemaResult struct {
	Schema string `json:"schema"`
}

// RenderImageResult holds the outcome of a render call. Exactly one of
// ImageURL and Text is populated, except when the model returned no content
// at all, in which case both are empty.
type RenderImageResult struct {
	ImageURL string `json:"image_url,omitempty"`
	Text     string `json:"text,omitempty"`
}
