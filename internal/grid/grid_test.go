package grid

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// testGrid has value = 100*ti + 10*ni + pi at node (ti, ni, pi).
func testGrid() *Grid {
	g := &Grid{
		Temperatures: []float64{300, 310, 320},
		Pressures:    []float64{0, 10, 20, 30},
		NaCl:         []float64{0, 2},
		Quantities:   map[string][]float64{},
	}
	values := make([]float64, g.Size())
	for ti := range g.Temperatures {
		for ni := range g.NaCl {
			for pi := range g.Pressures {
				values[g.offset(ti, ni)+pi] = float64(100*ti + 10*ni + pi)
			}
		}
	}
	g.Quantities["x"] = values
	return g
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(g *Grid)
		want   string
	}{
		{"valid", func(g *Grid) {}, ""},
		{"one temperature", func(g *Grid) { g.Temperatures = []float64{300} }, "temperature axis has 1 values"},
		{"one NaCl", func(g *Grid) { g.NaCl = g.NaCl[:1] }, "NaCl axis has 1 values"},
		{"no pressures", func(g *Grid) { g.Pressures = nil }, "pressure axis has 0 values"},
		{"descending", func(g *Grid) { g.Temperatures = []float64{320, 310, 300} }, "not strictly ascending"},
		{"duplicate", func(g *Grid) { g.NaCl = []float64{2, 2} }, "not strictly ascending"},
		{"infinite", func(g *Grid) { g.NaCl = []float64{0, math.Inf(1)} }, "not finite"},
		{"ragged", func(g *Grid) { g.Quantities["x"] = g.Quantities["x"][:5] }, "not a multiple of 4 pressures"},
		{"short", func(g *Grid) { g.Quantities["x"] = g.Quantities["x"][:8] }, "has 8 values, want 24"},
		{"no quantities", func(g *Grid) { g.Quantities = nil }, "no quantities"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := testGrid()
			test.modify(g)
			err := g.Validate()
			if test.want == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrMalformedGrid) || !strings.Contains(err.Error(), test.want) {
				t.Errorf("Validate() = %v, want malformed grid error containing %q", err, test.want)
			}
		})
	}
}

func TestCurve(t *testing.T) {
	g := testGrid()
	got, err := g.Curve("x", 2, 1)
	if err != nil {
		t.Fatalf("Curve() unexpected error: %v", err)
	}
	want := []float64{210, 211, 212, 213}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Curve() = %v, want %v", got, want)
		}
	}
	if _, err := g.Curve("y", 0, 0); !errors.Is(err, ErrUnknownQuantity) {
		t.Errorf("Curve(y) error = %v, want ErrUnknownQuantity", err)
	}
	if _, err := g.Curve("x", 3, 0); err == nil {
		t.Error("Curve out of range returned no error")
	}
}

const sampleTable = `T,P,NaCl,xH2S,r
300,10,1,0.3,1001
300,0,0,0.0,990
300,10,0,0.2,1000
310,0,0,0.0,980
310,10,0,0.4,985
310,0,1,0.1,991
300,0,1,0.1,1000
`

func TestParseCSV(t *testing.T) {
	g, err := ParseCSV(strings.NewReader(sampleTable), map[string]string{"xH2S": "xH2S", "density": "r"})
	if err != nil {
		t.Fatalf("ParseCSV() unexpected error: %v", err)
	}
	if len(g.Temperatures) != 2 || len(g.Pressures) != 2 || len(g.NaCl) != 2 {
		t.Fatalf("axes = %v %v %v", g.Temperatures, g.Pressures, g.NaCl)
	}
	if g.Pressures[0] != 0 {
		t.Errorf("zero pressure dropped: %v", g.Pressures)
	}
	density, _ := g.Curve("density", 0, 1)
	if density[0] != 1000 || density[1] != 1001 {
		t.Errorf("density at (300, 1) = %v, want [1000 1001]", density)
	}
	x, _ := g.Curve("xH2S", 1, 0)
	if x[0] != 0 || x[1] != 0.4 {
		t.Errorf("xH2S at (310, 0) = %v, want [0 0.4]", x)
	}
	// (310 K, 1 m, 10 bar) is absent from the table
	missing, _ := g.Curve("xH2S", 1, 1)
	if missing[0] != 0.1 || !math.IsNaN(missing[1]) {
		t.Errorf("xH2S at (310, 1) = %v, want [0.1 NaN]", missing)
	}
}

func TestParseCSVFailure(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		columns   map[string]string
		wantedErr string
	}{
		{"empty", "", map[string]string{"x": "x"}, "empty table"},
		{"header only", "T,P,NaCl,x\n", map[string]string{"x": "x"}, "no rows"},
		{"missing axis", "T,P,x\n1,2,3\n", map[string]string{"x": "x"}, `missing column "NaCl"`},
		{"missing quantity", "T,P,NaCl\n1,2,3\n", map[string]string{"x": "x"}, `missing column "x"`},
		{"bad number", "T,P,NaCl,x\n1,foo,3,4\n", map[string]string{"x": "x"}, "line 2"},
		{"repeated node", "T,P,NaCl,x\n1,0,0,1\n2,0,0,1\n1,0,0,5\n", map[string]string{"x": "x"}, "line 4: node T=1 P=0 NaCl=0 repeats line 2"},
		{"single temperature", "T,P,NaCl,x\n1,0,0,1\n1,0,1,1\n", map[string]string{"x": "x"}, "temperature axis has 1 values"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(test.table), test.columns)
			if !errors.Is(err, ErrMalformedGrid) || !strings.Contains(err.Error(), test.wantedErr) {
				t.Errorf("ParseCSV() error = %v, want malformed grid error containing %q", err, test.wantedErr)
			}
		})
	}
}
