package provider

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/georesolve/internal/address"
	"github.com/sells-group/georesolve/internal/geo"
	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/ocr"
)

// OCRProvider reads signage in the object's photos, recovers street
// addresses from the text and geocodes them.
type OCRProvider struct {
	images   ImageSource
	ocr      ocr.Extractor
	engine   *address.Engine
	selector AddressSelector
	table    *geo.Table
}

// NewOCRProvider wires the OCR stage.
func NewOCRProvider(images ImageSource, ext ocr.Extractor, engine *address.Engine, sel AddressSelector, table *geo.Table) *OCRProvider {
	return &OCRProvider{images: images, ocr: ext, engine: engine, selector: sel, table: table}
}

// Name implements Provider.
func (p *OCRProvider) Name() string { return NameOCR }

// Resolve implements Provider. Photos are tried in order; the first one
// whose text yields a geocoded address in the region wins.
func (p *OCRProvider) Resolve(ctx context.Context, ref model.ObjectRef) (*model.Candidate, error) {
	if len(ref.ImageURLs) == 0 {
		return nil, nil
	}
	region := regionProfile(p.table, ref.RegionCode)

	imgs, err := fetchAll(ctx, p.images, ref.ImageURLs)
	if err != nil {
		return nil, unavailable(NameOCR, err)
	}

	var selErr error
	for i, img := range imgs {
		text, err := p.ocr.ExtractText(ctx, img)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			selErr = worseErr(selErr, unavailable(NameOCR, err))
			continue
		}

		cands := p.engine.Extract(address.SplitText(text), region)
		zap.L().Debug("provider: ocr candidates",
			zap.String("object", ref.ID),
			zap.Int("image", i),
			zap.Strings("candidates", address.Texts(cands)),
		)
		if len(cands) == 0 {
			continue
		}

		m, err := p.selector.SelectAny(ctx, address.Texts(cands), ref.RegionCode)
		if m != nil {
			return matchCandidate(NameOCR, m).WithEvidence(model.EvidenceOCRText, clip(text, 500)), nil
		}
		selErr = worseErr(selErr, err)
	}
	return nil, selErr
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
