package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "market trends", b: "market trends", want: 1.0},
		{name: "case folded", a: "Market Trends", b: "market TRENDS", want: 1.0},
		{name: "partial overlap", a: "a b c", b: "b c d", want: 0.5},
		{name: "disjoint", a: "alpha beta", b: "gamma delta", want: 0.0},
		{name: "duplicates collapse", a: "go go go", b: "go", want: 1.0},
		{name: "empty left", a: "", b: "anything", want: 0.0},
		{name: "whitespace only", a: "   \t\n", b: "anything", want: 0.0},
		{name: "punctuation is part of token", a: "market,", b: "market", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestJaccard_Symmetric(t *testing.T) {
	a := "renewable energy market outlook"
	b := "energy storage market"
	assert.Equal(t, Jaccard(a, b), Jaccard(b, a))
}
