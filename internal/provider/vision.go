package provider

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/georesolve/internal/address"
	"github.com/sells-group/georesolve/internal/geo"
	"github.com/sells-group/georesolve/internal/model"
	"github.com/sells-group/georesolve/internal/vision"
)

// ClueExtractor reads location clues from photos. *vision.Analyzer
// implements it.
type ClueExtractor interface {
	Analyze(ctx context.Context, objectID string, images [][]byte, region geo.RegionProfile) (*vision.Clues, error)
}

// VisionProvider geocodes the addresses a vision model reads in the photos.
type VisionProvider struct {
	images   ImageSource
	clues    ClueExtractor
	selector AddressSelector
	table    *geo.Table
}

// NewVisionProvider wires the vision stage.
func NewVisionProvider(images ImageSource, clues ClueExtractor, sel AddressSelector, table *geo.Table) *VisionProvider {
	return &VisionProvider{images: images, clues: clues, selector: sel, table: table}
}

// Name implements Provider.
func (p *VisionProvider) Name() string { return NameVision }

// Resolve implements Provider.
func (p *VisionProvider) Resolve(ctx context.Context, ref model.ObjectRef) (*model.Candidate, error) {
	if len(ref.ImageURLs) == 0 {
		return nil, nil
	}
	region := regionProfile(p.table, ref.RegionCode)

	imgs, err := fetchAll(ctx, p.images, ref.ImageURLs)
	if err != nil {
		return nil, unavailable(NameVision, err)
	}
	clues, err := p.clues.Analyze(ctx, ref.ID, imgs, region)
	if err != nil {
		return nil, unavailable(NameVision, err)
	}
	if clues.Empty() {
		return nil, nil
	}

	var addrs []string
	for _, a := range clues.Addresses() {
		std, changes := address.Standardize(a, region)
		if len(changes) > 0 {
			zap.L().Debug("provider: standardized vision address",
				zap.String("object", ref.ID), zap.String("from", a), zap.String("to", std))
		}
		addrs = append(addrs, std)
	}

	m, err := p.selector.SelectAny(ctx, addrs, ref.RegionCode)
	if m == nil {
		return nil, err
	}
	return matchCandidate(NameVision, m).
		WithEvidence(model.EvidenceHint, strings.Join(clues.Landmarks, "; ")), nil
}
