package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_String(t *testing.T) {
	assert.Equal(t, "Rue X, Paris, FR", Query{Street: "Rue X", City: "Paris", CountryCode: "fr"}.String())
	assert.Equal(t, "free text", Query{Text: "free text", CountryCode: "fr"}.String())
	assert.False(t, Query{Text: "t", Street: "s"}.Structured())
}

func TestCacheKey_Normalizes(t *testing.T) {
	a := CacheKey(Query{Text: "Rue de la  Roquette"})
	b := CacheKey(Query{Text: " rue DE LA roquette "})
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, CacheKey(Query{Street: "Rue de la Roquette"}))
}

func TestPlace_ShortAddress(t *testing.T) {
	p := Place{DisplayName: "Somewhere, Earth"}
	assert.Equal(t, "Somewhere, Earth", p.ShortAddress())

	p.Address = map[string]string{"pedestrian": "Spring Gardens", "town": "London"}
	assert.Equal(t, "Spring Gardens, London", p.ShortAddress())

	p.Address = map[string]string{"country": "France"}
	assert.Equal(t, "Somewhere, Earth", p.ShortAddress())
}
