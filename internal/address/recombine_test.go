package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/georesolve/internal/geo"
)

func TestRecombine_SplitUKStreet(t *testing.T) {
	e := NewEngine()
	got := e.Recombine([]string{"SPRING", "GARDENS SW1"}, geo.LocaleUK)
	require.NotEmpty(t, got)

	top := got[0]
	assert.Equal(t, "Spring Gardens SW1", top.Text)
	assert.GreaterOrEqual(t, top.Score, 90)
	assert.Equal(t, KindRecombined, top.Kind)
	assert.Equal(t, WeightGazetteer, top.Breakdown.Gazetteer)
	assert.Equal(t, WeightPostcode, top.Breakdown.Postcode)
	assert.Equal(t, WeightAdjacency, top.Breakdown.Adjacency)
}

func TestRecombine_FrenchArticles(t *testing.T) {
	e := NewEngine()
	got := e.Recombine([]string{"RUE DE LA ROQUETTE"}, geo.LocaleFR)
	require.Len(t, got, 1)
	assert.Equal(t, "Rue de la Roquette", got[0].Text)
	assert.Equal(t, 80, got[0].Score)
}

func TestRecombine_FrenchNameOnNextLine(t *testing.T) {
	e := NewEngine()
	got := e.Recombine([]string{"RUE", "DE LA ROQUETTE", "75011"}, geo.LocaleFR)
	require.NotEmpty(t, got)
	assert.Equal(t, "Rue de la Roquette 75011", got[0].Text)
	assert.Equal(t, WeightPostcode, got[0].Breakdown.Postcode)
	assert.Equal(t, WeightAdjacency, got[0].Breakdown.Adjacency)
}

func TestRecombine_BuildingNumber(t *testing.T) {
	e := NewEngine()
	got := e.Recombine([]string{"133", "ILFORD HOUSE"}, geo.LocaleUK)
	require.Len(t, got, 2)

	assert.Equal(t, "133 Ilford House", got[0].Text)
	assert.Equal(t, WeightNumberPrefix+WeightNumberOccurrence, got[0].Breakdown.Number)
	assert.Equal(t, "Ilford House", got[1].Text)
	assert.Equal(t, got[1].Score+WeightNumberPrefix+WeightNumberOccurrence, got[0].Score)
}

func TestRecombine_Threshold(t *testing.T) {
	e := NewEngine()
	assert.Empty(t, e.Recombine([]string{"MORTON STREET"}, geo.LocaleUK))

	got := e.Recombine([]string{"MORTON STREET E1"}, geo.LocaleUK)
	require.Len(t, got, 1)
	assert.Equal(t, "Morton Street E1", got[0].Text)
	assert.Equal(t, 60, got[0].Score)
}

func TestRecombine_TopK(t *testing.T) {
	e := NewEngine(WithWeights(Weights{TopK: 2}))
	lines := []string{"OXFORD", "BAKER", "REGENT", "FLEET", "STREET W1"}
	got := e.Recombine(lines, geo.LocaleUK)
	assert.Len(t, got, 2)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)
}

func TestRecombine_Deterministic(t *testing.T) {
	e := NewEngine()
	lines := []string{"133", "OXFORD", "ILFORD HOUSE", "BRICK LANE E1", "KINGS ROAD", "12", "133"}
	first := e.Recombine(lines, geo.LocaleOther)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Recombine(lines, geo.LocaleOther))
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Spring Gardens SW1", TitleCase("SPRING GARDENS SW1"))
	assert.Equal(t, "Rue de la Roquette", TitleCase("RUE DE LA ROQUETTE"))
	assert.Equal(t, "Rue de l'Ouest", TitleCase("RUE DE L'OUEST"))
	assert.Equal(t, "12 Brewer Street W1F", TitleCase("12 brewer street w1f"))
}

func TestRecombine_VocabularyWithoutPostcode(t *testing.T) {
	assert.True(t, UKVocabulary.Postcode.MatchString("SW1"))
	assert.True(t, FrenchVocabulary.Postcode.MatchString("75011"))

	v := *UKVocabulary
	v.Postcode = nil
	var got []Candidate
	require.NotPanics(t, func() {
		got = DefaultWeights().Recombine([]string{"SPRING", "GARDENS SW1"}, &v)
	})
	for _, c := range got {
		assert.Zero(t, c.Breakdown.Postcode)
	}
}
