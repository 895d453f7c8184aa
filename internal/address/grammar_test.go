package address

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/georesolve/internal/geo"
)

func TestGrammarMatch(t *testing.T) {
	tests := []struct {
		name    string
		grammar *Grammar
		line    string
		want    []string
	}{
		{name: "french article elision", grammar: FrenchGrammar, line: "RUE DE LA ROQUETTE", want: []string{"RUE DE LA ROQUETTE"}},
		{name: "french with number", grammar: FrenchGrammar, line: "12 rue Oberkampf", want: []string{"12 rue Oberkampf"}},
		{name: "french place", grammar: FrenchGrammar, line: "Place des Vosges", want: []string{"Place des Vosges"}},
		{name: "french mixed case noise", grammar: FrenchGrammar, line: "rue oBerKampf", want: nil},
		{name: "french doubled i", grammar: FrenchGrammar, line: "RUE DE RIIVOLI", want: nil},
		{name: "uk with postcode", grammar: UKGrammar, line: "12 Brewer Street W1", want: []string{"12 Brewer Street W1"}},
		{name: "uk building", grammar: UKGrammar, line: "ILFORD HOUSE", want: []string{"ILFORD HOUSE"}},
		{name: "uk name too short", grammar: UKGrammar, line: "AB Street", want: nil},
		{name: "uk no type", grammar: UKGrammar, line: "GARDENS SW1", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.grammar.Match(tt.line))
		})
	}
}

func TestGrammarsFor(t *testing.T) {
	assert.Equal(t, []*Grammar{UKGrammar, FrenchGrammar}, GrammarsFor(geo.LocaleUK))
	assert.Equal(t, []*Grammar{FrenchGrammar, UKGrammar}, GrammarsFor(geo.LocaleFR))
	assert.Equal(t, []*Grammar{FrenchGrammar, UKGrammar}, GrammarsFor(geo.LocaleOther))
}
