// Package convert turns uploaded files into image payloads for the pipeline.
// PDF rasterization is an external capability behind PageImager; image files
// pass through as data URLs; anything else is ignored.
package convert

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

var pdfMagic = []byte("%PDF-")

// PageImager converts raw PDF bytes into an ordered list of page images, one
// self-contained data URL per page. Implementations live outside the core.
type PageImager interface {
	Pages(ctx context.Context, pdf []byte) ([]string, error)
}

// ToImages maps one uploaded file to its image payloads. PDFs go through the
// pager; images become a single data URL with no conversion; other files
// yield (nil, nil).
func ToImages(ctx context.Context, data []byte, filename string, pager PageImager) ([]string, error) {
	if isPDF(data, filename) {
		if pager == nil {
			return nil, errors.New("no pdf converter configured")
		}
		return pager.Pages(ctx, data)
	}
	if mediaType := http.DetectContentType(data); strings.HasPrefix(mediaType, "image/") {
		return []string{DataURL(mediaType, data)}, nil
	}
	return nil, nil
}

// DataURL packs raw bytes into a self-contained data URL.
func DataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func isPDF(data []byte, filename string) bool {
	if len(data) >= len(pdfMagic) && string(data[:len(pdfMagic)]) == string(pdfMagic) {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
