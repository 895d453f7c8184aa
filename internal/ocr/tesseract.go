package ocr

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rotisserie/eris"
)

// Tesseract extracts text with the tesseract CLI, feeding the image on stdin.
type Tesseract struct {
	binPath string
	langs   string
}

// NewTesseract creates a Tesseract extractor. Empty arguments fall back to
// "tesseract" and "fra+eng".
func NewTesseract(binPath, langs string) *Tesseract {
	if binPath == "" {
		binPath = "tesseract"
	}
	if langs == "" {
		langs = "fra+eng"
	}
	return &Tesseract{binPath: binPath, langs: langs}
}

func (t *Tesseract) args() []string {
	// psm 11: sparse text, which suits signage in street photos.
	return []string{"stdin", "stdout", "-l", t.langs, "--psm", "11"}
}

// ExtractText runs tesseract on image and returns stdout.
func (t *Tesseract) ExtractText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", eris.New("ocr: empty image")
	}
	cmd := exec.CommandContext(ctx, t.binPath, t.args()...)
	cmd.Stdin = bytes.NewReader(image)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "ocr: tesseract failed: %s", stderr.String())
	}
	return stdout.String(), nil
}
