// Package vision asks a multimodal model for location clues in photos of an
// installation and turns them into address candidates.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/georesolve/internal/geo"
	"github.com/sells-group/georesolve/pkg/anthropic"
)

// Clues is the structured answer extracted from the photos.
type Clues struct {
	StreetSigns      []string `json:"street_signs"`
	ShopSigns        []string `json:"shop_signs"`
	Landmarks        []string `json:"landmarks"`
	BestAddressGuess string   `json:"best_address_guess"`
	Confidence       float64  `json:"confidence"`
}

// Empty reports whether the model found nothing usable.
func (c *Clues) Empty() bool {
	return c == nil || (c.BestAddressGuess == "" && len(c.StreetSigns) == 0 && len(c.Landmarks) == 0)
}

// Addresses returns geocodable candidates, best guess first, then street
// signs, then landmarks, with duplicates removed.
func (c *Clues) Addresses() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		k := strings.ToLower(s)
		if s == "" || seen[k] {
			return
		}
		seen[k] = true
		out = append(out, s)
	}
	add(c.BestAddressGuess)
	for _, s := range c.StreetSigns {
		add(s)
	}
	for _, s := range c.Landmarks {
		add(s)
	}
	return out
}

// Analyzer extracts Clues with an Anthropic model.
type Analyzer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	maxPx     int
}

// NewAnalyzer creates an Analyzer. maxPx bounds the longest image side.
func NewAnalyzer(client anthropic.Client, model string, maxTokens, maxPx int) *Analyzer {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Analyzer{client: client, model: model, maxTokens: int64(maxTokens), maxPx: maxPx}
}

const systemPrompt = `You locate small street-art mosaics from photos taken in place.
Read every street name plate, shop sign, house number and landmark visible in the images.
Answer with one JSON object and nothing else:
{"street_signs": [..], "shop_signs": [..], "landmarks": [..], "best_address_guess": "..", "confidence": 0.0}
best_address_guess is a single postal address ("number street, postcode city") or "" when the
photos do not show enough. confidence is between 0 and 1. Never invent text you cannot read.`

// Analyze sends the images with the region as context and parses the answer.
// Undecodable images are skipped; with none left it returns an error.
func (a *Analyzer) Analyze(ctx context.Context, objectID string, images [][]byte, region geo.RegionProfile) (*Clues, error) {
	var atts []anthropic.Image
	for i, raw := range images {
		scaled, err := Downscale(raw, a.maxPx)
		if err != nil {
			zap.L().Debug("vision: skipping image", zap.String("object", objectID), zap.Int("index", i), zap.Error(err))
			continue
		}
		atts = append(atts, anthropic.Image{MediaType: "image/jpeg", Data: scaled})
	}
	if len(atts) == 0 {
		return nil, eris.Errorf("vision: no decodable images for %s", objectID)
	}

	prompt := "Where was this photographed?"
	if region.Name != "" {
		prompt = fmt.Sprintf("These photos were taken in or near %s (%s). Where exactly?", region.Name, strings.ToUpper(region.CountryCode))
	}

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    anthropic.BuildCachedSystemBlocks(systemPrompt),
		Messages:  []anthropic.Message{{Role: "user", Content: prompt, Images: atts}},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "vision: analyze %s", objectID)
	}
	resp.Usage.LogCost(a.model, objectID)

	clues, err := ParseClues(resp.Text())
	if err != nil {
		return nil, eris.Wrapf(err, "vision: analyze %s", objectID)
	}
	return clues, nil
}

// ParseClues extracts the JSON object from a model answer, tolerating code
// fences and surrounding prose.
func ParseClues(text string) (*Clues, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, eris.New("vision: no JSON object in answer")
	}
	var c Clues
	if err := json.Unmarshal([]byte(text[start:end+1]), &c); err != nil {
		return nil, eris.Wrap(err, "vision: parse clues")
	}
	c.Confidence = min(max(c.Confidence, 0), 1)
	return &c, nil
}
