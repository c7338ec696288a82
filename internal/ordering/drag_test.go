package ordering

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDropTarget(t *testing.T) {
	tests := []struct {
		name        string
		active      int
		translation float64
		height      float64
		count       int
		want        int
	}{
		{"no movement", 1, 0, 60, 4, 1},
		{"down one", 0, 60, 60, 4, 1},
		{"rounds up", 0, 95, 60, 4, 2},
		{"rounds down", 0, 80, 60, 4, 1},
		{"up two", 3, -120, 60, 4, 1},
		{"clamped high", 2, 1000, 60, 4, 3},
		{"clamped low", 1, -1000, 60, 4, 0},
		{"zero height", 2, 500, 0, 4, 2},
		{"empty list", 0, 60, 60, 0, 0},
		{"huge drag down", 0, 1e20, 1, 5, 4},
		{"huge drag up", 4, -1e20, 1, 5, 0},
		{"infinite down", 0, math.Inf(1), 1, 5, 4},
		{"infinite up", 3, math.Inf(-1), 1, 5, 0},
		{"nan stays put", 2, math.NaN(), 1, 5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DropTarget(tt.active, tt.translation, tt.height, tt.count))
		})
	}
}

func TestDisplacement(t *testing.T) {
	// Dragging index 1 down to 3: only item 2 slides up.
	got := make([]int, 5)
	for i := range got {
		got[i] = Displacement(i, 1, 3)
	}
	assert.Equal(t, []int{0, 0, -1, 0, 0}, got)

	// Dragging index 3 up to 1: only item 2 slides down.
	for i := range got {
		got[i] = Displacement(i, 3, 1)
	}
	assert.Equal(t, []int{0, 0, 1, 0, 0}, got)

	assert.Equal(t, 0, Displacement(2, 2, 2))
}
