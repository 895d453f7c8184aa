package provider

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/georesolve/internal/resilience"
)

// ImageSource downloads the photos attached to an object.
type ImageSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPImages fetches images over HTTP.
type HTTPImages struct {
	http *http.Client
}

// NewHTTPImages returns an ImageSource. A nil client gets a 30s timeout.
func NewHTTPImages(hc *http.Client) *HTTPImages {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPImages{http: hc}
}

// Fetch implements ImageSource.
func (h *HTTPImages) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "images: create request")
	}
	resp, err := h.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "images: http request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := resilience.CheckStatus("images", resp.StatusCode); err != nil {
		return nil, err
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, eris.Wrap(err, "images: read body")
	}
	return b, nil
}

// fetchAll downloads urls concurrently, keeping order and dropping failures.
// It errors only when every download failed.
func fetchAll(ctx context.Context, src ImageSource, urls []string) ([][]byte, error) {
	out := make([][]byte, len(urls))
	errs := make([]error, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, u := range urls {
		g.Go(func() error {
			b, err := src.Fetch(gctx, u)
			out[i], errs[i] = b, err
			return nil
		})
	}
	_ = g.Wait()

	var kept [][]byte
	var lastErr error
	for i, b := range out {
		if errs[i] != nil {
			zap.L().Debug("images: fetch failed", zap.String("url", urls[i]), zap.Error(errs[i]))
			lastErr = errs[i]
			continue
		}
		kept = append(kept, b)
	}
	if len(kept) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return kept, nil
}
