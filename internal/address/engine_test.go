package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/georesolve/internal/geo"
)

func region(t *testing.T, code string) geo.RegionProfile {
	t.Helper()
	p, ok := geo.DefaultTable().Lookup(code)
	require.True(t, ok)
	return p
}

func TestExtract_FrenchDirectLine(t *testing.T) {
	e := NewEngine()
	got := e.Extract([]string{"RUE DE LA ROQUETTE"}, region(t, "PA"))
	require.Len(t, got, 1)
	assert.Equal(t, "Rue de la Roquette, Paris", got[0].Text)
}

func TestExtract_UKFragments(t *testing.T) {
	e := NewEngine()
	got := e.Extract([]string{"SPRING", "GARDENS SW1"}, region(t, "LDN"))
	require.NotEmpty(t, got)
	assert.Equal(t, "Spring Gardens SW1, London", got[0].Text)
	assert.GreaterOrEqual(t, got[0].Score, 90)
}

func TestExtract_RecombinedBeforeDirect(t *testing.T) {
	e := NewEngine()
	lines := []string{"12 Brewer Street W1", "SPRING", "GARDENS SW1"}
	got := e.Extract(lines, geo.RegionProfile{Code: "LDN", Locale: geo.LocaleUK})

	texts := Texts(got)
	require.Contains(t, texts, "12 Brewer Street W1")
	require.Contains(t, texts, "Spring Gardens SW1")

	lastRecombined, firstDirect := -1, len(got)
	for i, c := range got {
		if c.Kind == KindRecombined {
			lastRecombined = i
		} else if i < firstDirect {
			firstDirect = i
		}
	}
	assert.Less(t, lastRecombined, firstDirect)
}

func TestExtract_NothingFound(t *testing.T) {
	e := NewEngine()
	assert.Empty(t, e.Extract([]string{"---", "ll1l|il", "OPEN 24H"}, region(t, "PA")))
}

func TestDirect_SkipsShortAndNoisyLines(t *testing.T) {
	e := NewEngine()
	got := e.Direct([]string{"RUE", "ll1l|il", "rue oBerKampf", "12 rue Oberkampf"}, geo.LocaleFR)
	assert.Equal(t, []string{"12 rue Oberkampf"}, got)
}
