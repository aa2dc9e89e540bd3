package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Volkswagen", "volkswagen"},
		{"strips diacritics", "Citroën ë-C4", "citroen e-c4"},
		{"caron", "Škoda", "skoda"},
		{"ring above", "Ålesund", "alesund"},
		{"collapses whitespace", "  ID.4   Pro \t Performance ", "id.4 pro performance"},
		{"non-breaking space", "bZ4X\u00a0Executive", "bz4x executive"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
		{"keeps symbols", "Pure+ 1.2", "pure+ 1.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range []string{"Citroën", "  Mercedes-Benz  EQA ", "Škoda Enyaq iV", ""} {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestSameIdentity_LookalikesStayDistinct(t *testing.T) {
	// Latin "C" vs Cyrillic "С": visually identical, different code points
	assert.False(t, SameIdentity("Citroen", "\u0421itroen"))
	// "ø" has no canonical decomposition
	assert.False(t, SameIdentity("Søren", "Soren"))
	assert.True(t, SameIdentity("CITROËN", "citroen"))
}
