package provider

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/georesolve/internal/address"
	"github.com/sells-group/georesolve/internal/geo"
	"github.com/sells-group/georesolve/internal/model"
)

// Input is what an operator supplies for a suspended object: either a
// coordinate or an address to geocode. Skip gives up on the object.
type Input struct {
	Coordinate *model.Coordinate `json:"coordinate,omitempty"`
	Address    string            `json:"address,omitempty"`
	Skip       bool              `json:"skip,omitempty"`
}

var latLngInput = regexp.MustCompile(`^\s*(-?\d{1,2}(?:\.\d+)?)\s*[,;\s]\s*(-?\d{1,3}(?:\.\d+)?)\s*$`)

// ParseInput reads a free-text operator answer: "lat, lng", an address, or
// an empty string to skip.
func ParseInput(s string) Input {
	s = strings.TrimSpace(s)
	if s == "" {
		return Input{Skip: true}
	}
	if m := latLngInput.FindStringSubmatch(s); m != nil {
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lng, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			return Input{Coordinate: &model.Coordinate{Lat: lat, Lng: lng}}
		}
	}
	return Input{Address: s}
}

// Interactive is the last-resort stage. Resolve always asks for operator
// input; the pipeline suspends and later calls Apply with the answer.
type Interactive struct {
	selector AddressSelector
	table    *geo.Table
}

// NewInteractive builds the provider. sel may be nil, in which case only
// coordinates are accepted.
func NewInteractive(sel AddressSelector, table *geo.Table) *Interactive {
	return &Interactive{selector: sel, table: table}
}

// Name implements Provider.
func (p *Interactive) Name() string { return NameInteractive }

// Resolve implements Provider by requesting input.
func (p *Interactive) Resolve(_ context.Context, ref model.ObjectRef) (*model.Candidate, error) {
	return nil, eris.Wrap(model.ErrNeedsInput, ref.ID)
}

// Apply turns operator input into a candidate. Skip yields no candidate.
func (p *Interactive) Apply(ctx context.Context, ref model.ObjectRef, in Input) (*model.Candidate, error) {
	switch {
	case in.Skip:
		return nil, nil
	case in.Coordinate != nil:
		return model.NewCandidate(NameInteractive, *in.Coordinate).
			WithEvidence(model.EvidenceHint, "operator coordinate"), nil
	case strings.TrimSpace(in.Address) != "":
		if p.selector == nil {
			return nil, eris.New("provider: interactive address input needs a geocoder")
		}
		std, _ := address.Standardize(in.Address, regionProfile(p.table, ref.RegionCode))
		m, err := p.selector.SelectAny(ctx, []string{std}, ref.RegionCode)
		if m == nil {
			return nil, err
		}
		return matchCandidate(NameInteractive, m).
			WithEvidence(model.EvidenceHint, "operator address"), nil
	}
	return nil, nil
}
