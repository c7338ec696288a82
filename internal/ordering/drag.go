package ordering

import "math"

// DropTarget is the index an item dragged from active would land on after
// moving translation units, given rows of uniform itemHeight.
func DropTarget(active int, translation, itemHeight float64, count int) int {
	if count <= 0 {
		return 0
	}
	delta := 0
	if itemHeight > 0 {
		q := translation / itemHeight
		if !math.IsNaN(q) {
			// Bound before converting so huge or infinite drags stay in range.
			q = math.Max(-float64(count), math.Min(float64(count), q))
			delta = int(math.Round(q))
		}
	}
	return clamp(active+delta, 0, count-1)
}

// Displacement is the preview shift, in slots, of item i while the item at
// active hovers over target. Items strictly between the two move one slot
// against the drag direction; the target and every other item stay put.
func Displacement(i, active, target int) int {
	switch {
	case target > active && i > active && i < target:
		return -1
	case target < active && i < active && i > target:
		return 1
	}
	return 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
