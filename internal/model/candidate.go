package model

// Evidence keys providers commonly set on Candidate.Evidence.
const (
	EvidenceAddress   = "address"
	EvidenceSourceURL = "source_url"
	EvidenceHint      = "hint"
	EvidenceOCRText   = "ocr_text"
	EvidenceQuery     = "geocode_query"
	EvidenceImageURL  = "image_url"
)

// Candidate is one provider's unvalidated claim about where an object is.
// Providers never assign confidence; the pipeline does.
type Candidate struct {
	Coordinate Coordinate        `json:"coordinate"`
	Provider   string            `json:"provider"`
	Address    string            `json:"address,omitempty"`
	Evidence   map[string]string `json:"evidence,omitempty"`
}

// NewCandidate builds a candidate with an initialized evidence map.
func NewCandidate(provider string, c Coordinate) *Candidate {
	return &Candidate{
		Coordinate: c,
		Provider:   provider,
		Evidence:   make(map[string]string),
	}
}

// WithEvidence records an audit key on the candidate and returns it.
func (c *Candidate) WithEvidence(key, value string) *Candidate {
	if value == "" {
		return c
	}
	if c.Evidence == nil {
		c.Evidence = make(map[string]string)
	}
	c.Evidence[key] = value
	return c
}
