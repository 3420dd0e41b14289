package solubility

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"Gateway/internal/grid"
	"Gateway/internal/metrics"

	"github.com/sirupsen/logrus"
)

//go:embed data/*.csv
var assets embed.FS

// Assets returns the bundled tables, or dir when it is set.
func Assets(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(assets, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Store holds one grid per system. A system whose table fails to load stays
// registered but unavailable.
type Store struct {
	grids       map[string]*grid.Grid
	unavailable map[string]error
}

type SystemStatus struct {
	System
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

func LoadStore(fsys fs.FS) *Store {
	s := &Store{
		grids:       make(map[string]*grid.Grid),
		unavailable: make(map[string]error),
	}
	for _, sys := range Systems {
		g, err := loadGrid(fsys, sys)
		if err != nil {
			logrus.WithError(err).WithField("system", sys.ID).Error("grid unavailable")
			s.unavailable[sys.ID] = err
			metrics.GridAvailable.WithLabelValues(sys.ID).Set(0)
			continue
		}
		logrus.WithFields(logrus.Fields{
			"system":       sys.ID,
			"temperatures": len(g.Temperatures),
			"pressures":    len(g.Pressures),
			"nacl":         len(g.NaCl),
		}).Info("grid loaded")
		s.grids[sys.ID] = g
		metrics.GridAvailable.WithLabelValues(sys.ID).Set(1)
	}
	return s
}

func loadGrid(fsys fs.FS, sys System) (*grid.Grid, error) {
	f, err := fsys.Open(sys.Asset)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := grid.ParseCSV(f, sys.columns())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sys.Asset, err)
	}
	return g, nil
}

// Grid returns the table for a system id or index.
func (s *Store) Grid(id string) (*grid.Grid, System, error) {
	sys, err := LookupSystem(id)
	if err != nil {
		return nil, System{}, err
	}
	g, ok := s.grids[sys.ID]
	if !ok {
		return nil, sys, fmt.Errorf("%w: %s: %v", ErrSystemUnavailable, sys.ID, s.unavailable[sys.ID])
	}
	return g, sys, nil
}

func (s *Store) Systems() []SystemStatus {
	out := make([]SystemStatus, 0, len(Systems))
	for _, sys := range Systems {
		st := SystemStatus{System: sys, Available: s.grids[sys.ID] != nil}
		if err := s.unavailable[sys.ID]; err != nil {
			st.Error = err.Error()
		}
		out = append(out, st)
	}
	return out
}

// AssembleCurve resolves the system's grid and assembles its curve.
func (s *Store) AssembleCurve(id string, temperature, nacl float64) (ResultCurve, error) {
	g, sys, err := s.Grid(id)
	if err != nil {
		return ResultCurve{}, err
	}
	return AssembleCurve(g, sys, temperature, nacl)
}
