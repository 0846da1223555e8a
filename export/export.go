// Package export produces the downloadable forms of the pipeline's outputs:
// the schema as markdown or rendered HTML, and the diagram image decoded from
// its data URL.
package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"regexp"

	"github.com/yuin/goldmark"
)

// SchemaMarkdown returns the schema's download bytes. The schema is already
// plain text/markdown; no transformation is applied beyond the byte copy.
func SchemaMarkdown(schema string) []byte {
	return []byte(schema)
}

// SchemaHTML converts the schema text to HTML for preview/download.
func SchemaHTML(schema string) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(schema), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var dataURLHeader = regexp.MustCompile(`^data:([a-zA-Z0-9.+-]+/[a-zA-Z0-9.+-]+);base64,`)

// DecodeImageDataURL splits a data URL into its media type and decoded bytes.
func DecodeImageDataURL(dataURL string) (mediaType string, data []byte, err error) {
	m := dataURLHeader.FindStringSubmatch(dataURL)
	if m == nil {
		return "", nil, errors.New("not a base64 data url")
	}
	decoded, err := base64.StdEncoding.DecodeString(dataURL[len(m[0]):])
	if err != nil {
		return "", nil, err
	}
	return m[1], decoded, nil
}

// ImageExt picks a file extension for a decoded image media type.
func ImageExt(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".png"
	}
}
