package vision

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder

	"github.com/rotisserie/eris"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Downscale decodes an image and, when its longest side exceeds maxPx,
// resizes it to fit. The result is always JPEG so the request size stays
// predictable. maxPx <= 0 only re-encodes.
func Downscale(src []byte, maxPx int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, eris.Wrap(err, "vision: decode image")
	}

	b := img.Bounds()
	w, h := fit(b.Dx(), b.Dy(), maxPx)
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, eris.Wrap(err, "vision: encode jpeg")
	}
	return buf.Bytes(), nil
}

func fit(w, h, maxPx int) (int, int) {
	if maxPx <= 0 || (w <= maxPx && h <= maxPx) {
		return w, h
	}
	if w >= h {
		return maxPx, max(1, h*maxPx/w)
	}
	return max(1, w*maxPx/h), maxPx
}
