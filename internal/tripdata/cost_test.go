package tripdata

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCost(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected float64
	}{
		{
			name:     "plain number",
			input:    42.5,
			expected: 42.5,
		},
		{
			name:     "integer",
			input:    7,
			expected: 7,
		},
		{
			name:     "amount object",
			input:    map[string]interface{}{"amount": 120.0, "currency": "EUR"},
			expected: 120,
		},
		{
			name:     "amount object with non-numeric amount",
			input:    map[string]interface{}{"amount": "expensive"},
			expected: 0,
		},
		{
			name:     "nil",
			input:    nil,
			expected: 0,
		},
		{
			name:     "string",
			input:    "12",
			expected: 0,
		},
		{
			name:     "arbitrary object",
			input:    map[string]interface{}{"price": 50.0},
			expected: 0,
		},
		{
			name:     "negative number clamps to zero",
			input:    -10.0,
			expected: 0,
		},
		{
			name:     "NaN clamps to zero",
			input:    math.NaN(),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCost(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.False(t, math.IsNaN(got))
			assert.False(t, math.IsInf(got, 0))
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}
