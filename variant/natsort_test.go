package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"a", "b", true},
		{"b", "a", false},
		{"a", "a", false},
		{"a2", "a10", true},
		{"a10", "a2", false},
		{"5V", "12V", true},
		{"R2", "R10", true},
		{"R002", "R2", false}, // equal numeric value compares equal
		{"A", "a1", true},
		{"1", "a", true}, // digits sort before letters
		{"", "a", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, naturalLess(tt.a, tt.b), "%q < %q", tt.a, tt.b)
	}
}

func TestSortNatural(t *testing.T) {
	names := []string{"R10", "R2", "C1", "R1", "5V", "12V"}
	sortNatural(names)
	assert.Equal(t, []string{"5V", "12V", "C1", "R1", "R2", "R10"}, names)
}
