package country

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

// TestNormalize resolves synonyms, codes, and names in that order.
func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"synonym uk", "UK", "GB"},
		{"synonym usa lowercase", "usa", "US"},
		{"synonym multi word", "united states of america", "US"},
		{"synonym holland", "Holland", "NL"},
		{"valid two letter code", "de", "DE"},
		{"unknown two letter code", "XX", ""},
		{"exact name", "Germany", "DE"},
		{"exact name with spaces", "  france  ", "FR"},
		{"exact beats partial", "Niger", "NE"},
		{"exact beats partial sudan", "Sudan", "SD"},
		{"unique partial", "zealand", "NZ"},
		{"ambiguous partial", "ind", ""},
		{"unknown", "mars", ""},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

// TestValid accepts known codes in any case.
func TestValid(t *testing.T) {
	assert.True(t, Valid("US"))
	assert.True(t, Valid("gb"))
	assert.True(t, Valid("KR"))
	assert.False(t, Valid("XX"))
	assert.False(t, Valid(""))
}

// TestNormalize_Idempotent checks that normalizing an already-normalized
// value is a fixed point, over arbitrary inputs and over the full name
// table.
func TestNormalize_Idempotent(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("normalize is idempotent", prop.ForAll(
		func(text string) bool {
			once := Normalize(text)
			return Normalize(once) == once
		},
		gen.AnyString(),
	))

	properties.Property("normalized output is empty or valid", prop.ForAll(
		func(text string) bool {
			code := Normalize(text)
			return code == "" || Valid(code)
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// TestNormalize_AllNamesResolve maps every table entry to its own code.
func TestNormalize_AllNamesResolve(t *testing.T) {
	for name, code := range names {
		assert.Equal(t, code, Normalize(name), "name %q", name)
	}
	for synonym, code := range synonyms {
		assert.Equal(t, code, Normalize(synonym), "synonym %q", synonym)
	}
}
