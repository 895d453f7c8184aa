// Package ocr extracts raw text lines from photos of installations.
package ocr

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/sells-group/georesolve/internal/config"
)

// Extractor extracts text content from an encoded image (JPEG, PNG, WebP).
type Extractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	switch cfg.Provider {
	case "local", "":
		return NewTesseract(cfg.TesseractPath, cfg.Languages), nil
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires mistral_api_key")
		}
		return NewMistralOCR(cfg.MistralKey, cfg.MistralModel), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}

// mimeType sniffs the image content type for data URLs.
func mimeType(image []byte) string {
	ct := http.DetectContentType(image)
	if ct == "application/octet-stream" {
		return "image/jpeg"
	}
	return ct
}
