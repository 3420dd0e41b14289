// Package grid holds precomputed (temperature, pressure, NaCl) lookup tables and
// the interpolation used to query them between nodes.
package grid

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrMalformedGrid   = errors.New("malformed grid")
	ErrUnknownQuantity = errors.New("unknown quantity")
)

// Grid is one chemical system's lookup table. Every quantity is stored flat with
// the pressure axis innermost, so each (temperature, NaCl) node owns a contiguous
// slice of len(Pressures) values. A Grid must not be modified once validated.
type Grid struct {
	Temperatures []float64
	Pressures    []float64
	NaCl         []float64
	Quantities   map[string][]float64
}

// Size is the number of values every quantity array must hold.
func (g *Grid) Size() int {
	return len(g.Temperatures) * len(g.NaCl) * len(g.Pressures)
}

func (g *Grid) offset(ti, ni int) int {
	return (ti*len(g.NaCl) + ni) * len(g.Pressures)
}

// Curve returns the stored pressure curve of quantity at node (ti, ni).
// The returned slice aliases the grid.
func (g *Grid) Curve(quantity string, ti, ni int) ([]float64, error) {
	values, ok := g.Quantities[quantity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuantity, quantity)
	}
	if ti < 0 || ti >= len(g.Temperatures) || ni < 0 || ni >= len(g.NaCl) {
		return nil, fmt.Errorf("grid: node (%d, %d) out of range", ti, ni)
	}
	off := g.offset(ti, ni)
	return values[off : off+len(g.Pressures)], nil
}

// Names returns the quantity names in sorted order.
func (g *Grid) Names() []string {
	names := make([]string, 0, len(g.Quantities))
	for name := range g.Quantities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the axis and layout invariants. Errors wrap ErrMalformedGrid.
func (g *Grid) Validate() error {
	if err := checkAxis("temperature", g.Temperatures, 2); err != nil {
		return err
	}
	if err := checkAxis("pressure", g.Pressures, 1); err != nil {
		return err
	}
	if err := checkAxis("NaCl", g.NaCl, 2); err != nil {
		return err
	}
	if len(g.Quantities) == 0 {
		return fmt.Errorf("%w: no quantities", ErrMalformedGrid)
	}
	size := g.Size()
	for name, values := range g.Quantities {
		if len(values)%len(g.Pressures) != 0 {
			return fmt.Errorf("%w: quantity %q has %d values, not a multiple of %d pressures",
				ErrMalformedGrid, name, len(values), len(g.Pressures))
		}
		if len(values) != size {
			return fmt.Errorf("%w: quantity %q has %d values, want %d",
				ErrMalformedGrid, name, len(values), size)
		}
	}
	return nil
}

func checkAxis(name string, axis []float64, min int) error {
	if len(axis) < min {
		return fmt.Errorf("%w: %s axis has %d values, need at least %d", ErrMalformedGrid, name, len(axis), min)
	}
	for i, v := range axis {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s axis value %d is not finite", ErrMalformedGrid, name, i)
		}
		if i > 0 && v <= axis[i-1] {
			return fmt.Errorf("%w: %s axis not strictly ascending at index %d", ErrMalformedGrid, name, i)
		}
	}
	return nil
}
