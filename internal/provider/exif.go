package provider

import (
	"bytes"
	"context"

	"github.com/rwcarlsen/goexif/exif"
	"go.uber.org/zap"

	"github.com/sells-group/georesolve/internal/model"
)

// EXIFProvider reads GPS tags embedded in the object's photos.
type EXIFProvider struct {
	images ImageSource
}

// NewEXIFProvider builds the provider over an image source.
func NewEXIFProvider(images ImageSource) *EXIFProvider {
	return &EXIFProvider{images: images}
}

// Name implements Provider.
func (p *EXIFProvider) Name() string { return NameEXIF }

// Resolve implements Provider. The first photo carrying a GPS position wins.
func (p *EXIFProvider) Resolve(ctx context.Context, ref model.ObjectRef) (*model.Candidate, error) {
	if len(ref.ImageURLs) == 0 {
		return nil, nil
	}
	for _, u := range ref.ImageURLs {
		raw, err := p.images.Fetch(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			zap.L().Debug("provider: exif fetch failed", zap.String("object", ref.ID), zap.String("url", u), zap.Error(err))
			continue
		}
		coord, ok := GPSFromEXIF(raw)
		if !ok {
			continue
		}
		return model.NewCandidate(NameEXIF, coord).
			WithEvidence(model.EvidenceImageURL, u), nil
	}
	return nil, nil
}

// GPSFromEXIF extracts the GPS position from an encoded image.
func GPSFromEXIF(raw []byte) (model.Coordinate, bool) {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return model.Coordinate{}, false
	}
	lat, lng, err := x.LatLong()
	if err != nil {
		return model.Coordinate{}, false
	}
	return model.Coordinate{Lat: lat, Lng: lng}, true
}
