package solubility

import (
	"errors"
	"math"
	"testing"
	"testing/fstest"
)

func TestLoadStoreBundled(t *testing.T) {
	s := LoadStore(Assets(""))
	for _, st := range s.Systems() {
		if !st.Available {
			t.Fatalf("system %s unavailable: %s", st.ID, st.Error)
		}
		g, _, err := s.Grid(st.ID)
		if err != nil {
			t.Fatalf("Grid(%s) unexpected error: %v", st.ID, err)
		}
		if len(g.Pressures) != 61 || g.Pressures[0] != 0 || g.Pressures[60] != 600 {
			t.Errorf("%s pressures = %v, want 0..600 step 10", st.ID, g.Pressures)
		}
		if g.Temperatures[0] != MinTemperature || g.Temperatures[len(g.Temperatures)-1] != st.MaxTemperature {
			t.Errorf("%s temperatures = %v, want %v..%v", st.ID, g.Temperatures, MinTemperature, st.MaxTemperature)
		}
		if g.NaCl[0] != MinNaCl || g.NaCl[len(g.NaCl)-1] != st.MaxNaCl {
			t.Errorf("%s NaCl = %v, want %v..%v", st.ID, g.NaCl, MinNaCl, st.MaxNaCl)
		}
		for _, q := range st.Quantities {
			for _, v := range g.Quantities[q.Name] {
				if math.IsNaN(v) {
					t.Fatalf("%s %s has missing nodes", st.ID, q.Name)
				}
			}
		}
	}
}

const ternaryTable = "T,P,NaCl,xH2S+xCO2\n" +
	"298.15,0,0,0\n298.15,0,4,0\n298.15,10,0,0.1\n298.15,10,4,0.05\n" +
	"348.15,0,0,0\n348.15,0,4,0\n348.15,10,0,0.08\n348.15,10,4,0.04\n"

func TestLoadStoreIsolatesBrokenSystems(t *testing.T) {
	fsys := fstest.MapFS{
		// block1.csv missing, block2.csv has a single temperature
		"block2.csv": {Data: []byte("T,P,NaCl,xH2S,r,H2S\n298.15,0,0,0,1000,0.1\n298.15,0,1,0,1010,0.1\n")},
		"block3.csv": {Data: []byte(ternaryTable)},
	}
	s := LoadStore(fsys)

	if _, _, err := s.Grid("co2"); !errors.Is(err, ErrSystemUnavailable) {
		t.Errorf("Grid(co2) error = %v, want ErrSystemUnavailable", err)
	}
	_, _, err := s.Grid("h2s")
	if !errors.Is(err, ErrSystemUnavailable) {
		t.Errorf("Grid(h2s) error = %v, want ErrSystemUnavailable", err)
	}
	if _, _, err := s.Grid("co2-h2s"); err != nil {
		t.Errorf("Grid(co2-h2s) unexpected error: %v", err)
	}

	statuses := s.Systems()
	if len(statuses) != 3 || statuses[0].Available || statuses[1].Available || !statuses[2].Available {
		t.Errorf("Systems() = %+v", statuses)
	}
	if statuses[1].Error == "" {
		t.Error("Systems() reports no error for the malformed table")
	}
}

func TestStoreMalformedErrorChain(t *testing.T) {
	s := LoadStore(fstest.MapFS{"block1.csv": {Data: []byte("T,P\n1,2\n")}})
	_, err := s.AssembleCurve("co2", 300, 1)
	if !errors.Is(err, ErrSystemUnavailable) {
		t.Errorf("AssembleCurve() error = %v, want ErrSystemUnavailable", err)
	}
}

func TestStoreUnknownSystem(t *testing.T) {
	s := LoadStore(Assets(""))
	curve, err := s.AssembleCurve("XYZ", 300, 1)
	if !errors.Is(err, ErrUnknownSystem) {
		t.Fatalf("AssembleCurve(XYZ) error = %v, want ErrUnknownSystem", err)
	}
	if curve.Pressures != nil || curve.System != "" {
		t.Errorf("AssembleCurve(XYZ) returned a partial result: %+v", curve)
	}
}

func TestAssetsDir(t *testing.T) {
	dir := t.TempDir()
	s := LoadStore(Assets(dir))
	for _, st := range s.Systems() {
		if st.Available {
			t.Errorf("system %s available from an empty directory", st.ID)
		}
	}
	if _, _, err := s.Grid("h2s"); !errors.Is(err, ErrSystemUnavailable) {
		t.Errorf("Grid(h2s) error = %v, want ErrSystemUnavailable", err)
	}
}
