package grid

import (
	"math"
	"sort"
)

type Position int

const (
	Below Position = iota
	Within
	Above
)

func (p Position) String() string {
	switch p {
	case Below:
		return "below"
	case Within:
		return "within"
	case Above:
		return "above"
	}
	return "unknown"
}

// Bracket is the pair of adjacent axis nodes surrounding a target value.
//
// The weights keep the naming of the lookup tables' reference tool. When the
// target is clamped (Below or Above) WeightToLower is the lower node's share.
// Inside the axis WeightToLower = (target-Lower)/span, the fractional distance
// from Lower, which is the upper node's share in a linear blend. Use LowerShare
// and UpperShare to blend.
type Bracket struct {
	Lower, Upper           float64
	LowerIndex, UpperIndex int
	WeightToLower          float64
	WeightToUpper          float64
	Position               Position
}

// NewBracket brackets target on axis, which must be strictly ascending with at
// least two values. NaN brackets like a target below the axis.
func NewBracket(axis []float64, target float64) Bracket {
	n := len(axis)
	if n < 2 {
		panic("grid: bracket axis needs at least two values")
	}
	if target <= axis[0] || math.IsNaN(target) {
		return Bracket{
			Lower: axis[0], Upper: axis[1],
			LowerIndex: 0, UpperIndex: 1,
			WeightToLower: 1, WeightToUpper: 0,
			Position: Below,
		}
	}
	if target >= axis[n-1] {
		return Bracket{
			Lower: axis[n-2], Upper: axis[n-1],
			LowerIndex: n - 2, UpperIndex: n - 1,
			WeightToLower: 0, WeightToUpper: 1,
			Position: Above,
		}
	}

	// first node >= target; 1 <= hi <= n-1 after the clamps above
	hi := sort.SearchFloat64s(axis, target)
	lo := hi - 1
	span := axis[hi] - axis[lo]
	return Bracket{
		Lower: axis[lo], Upper: axis[hi],
		LowerIndex: lo, UpperIndex: hi,
		WeightToLower: (target - axis[lo]) / span,
		WeightToUpper: (axis[hi] - target) / span,
		Position:      Within,
	}
}

// LowerShare is the weight of the lower node when blending.
func (b Bracket) LowerShare() float64 {
	if b.Position == Within {
		return b.WeightToUpper
	}
	return b.WeightToLower
}

// UpperShare is the weight of the upper node when blending.
func (b Bracket) UpperShare() float64 {
	if b.Position == Within {
		return b.WeightToLower
	}
	return b.WeightToUpper
}
