package grid

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

type corner struct {
	ti, ni int
	weight float64
}

// Interpolate estimates the pressure curve of quantity at (temperature, nacl)
// by bilinear interpolation between the four surrounding (T, NaCl) nodes.
// Targets outside the table are clamped to its edges. The result has one value
// per grid pressure.
func Interpolate(g *Grid, quantity string, temperature, nacl float64) ([]float64, error) {
	values, ok := g.Quantities[quantity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuantity, quantity)
	}

	bt := NewBracket(g.Temperatures, temperature)
	bn := NewBracket(g.NaCl, nacl)
	corners := [4]corner{
		{bt.LowerIndex, bn.LowerIndex, bt.LowerShare() * bn.LowerShare()},
		{bt.LowerIndex, bn.UpperIndex, bt.LowerShare() * bn.UpperShare()},
		{bt.UpperIndex, bn.LowerIndex, bt.UpperShare() * bn.LowerShare()},
		{bt.UpperIndex, bn.UpperIndex, bt.UpperShare() * bn.UpperShare()},
	}

	np := len(g.Pressures)
	out := make([]float64, np)
	for _, c := range corners {
		// unused corners may hold NaN for missing table cells
		if c.weight == 0 {
			continue
		}
		off := g.offset(c.ti, c.ni)
		floats.AddScaled(out, c.weight, values[off:off+np])
	}
	return out, nil
}
