package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnrealizedPL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pos        Position
		markPrice  float64
		pointValue float64
		expected   float64
	}{
		{
			name:       "long_profit",
			pos:        Position{Side: Long, Size: 10, EntryPrice: 150.00},
			markPrice:  155.00,
			pointValue: 1,
			expected:   50.0,
		},
		{
			name:       "long_loss",
			pos:        Position{Side: Long, Size: 10, EntryPrice: 150.00},
			markPrice:  148.50,
			pointValue: 1,
			expected:   -15.0,
		},
		{
			name:       "short_profit",
			pos:        Position{Side: Short, Size: 2, EntryPrice: 5900.00},
			markPrice:  5890.00,
			pointValue: 50,
			expected:   1000.0,
		},
		{
			name:       "short_loss",
			pos:        Position{Side: Short, Size: 2, EntryPrice: 5900.00},
			markPrice:  5905.25,
			pointValue: 50,
			expected:   -525.0,
		},
		{
			name:       "flat_at_entry",
			pos:        Position{Side: Long, Size: 3, EntryPrice: 2650.00},
			markPrice:  2650.00,
			pointValue: 100,
			expected:   0.0,
		},
		{
			name:       "point_value_scales",
			pos:        Position{Side: Long, Size: 1, EntryPrice: 70.00},
			markPrice:  70.25,
			pointValue: 1000,
			expected:   250.0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := UnrealizedPL(tt.pos, tt.markPrice, tt.pointValue)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}
