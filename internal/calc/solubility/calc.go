package solubility

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"Gateway/internal/grid"
	"Gateway/internal/metrics"
)

// Values marshals NaN as null.
type Values []float64

func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	b := make([]byte, 0, len(v)*10+2)
	b = append(b, '[')
	for i, x := range v {
		if i > 0 {
			b = append(b, ',')
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			b = append(b, "null"...)
			continue
		}
		b = strconv.AppendFloat(b, x, 'g', -1, 64)
	}
	return append(b, ']'), nil
}

// Series is one curve slot. Slots the system does not provide are present
// with Available false and no values.
type Series struct {
	Name      string `json:"name,omitempty"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
	Values    Values `json:"values"`
}

type ResultCurve struct {
	System      string    `json:"system"`
	Temperature float64   `json:"temperature"`
	NaCl        float64   `json:"nacl"`
	Pressures   []float64 `json:"pressures"`
	Series      [3]Series `json:"series"`
}

// Available returns the series the system provides, in slot order.
func (c ResultCurve) Available() []Series {
	var out []Series
	for _, s := range c.Series {
		if s.Available {
			out = append(out, s)
		}
	}
	return out
}

// Data is the matrix of available series values.
func (c ResultCurve) Data() []Values {
	var out []Values
	for _, s := range c.Available() {
		out = append(out, s.Values)
	}
	return out
}

func (c ResultCurve) MarshalJSON() ([]byte, error) {
	type plain ResultCurve
	return json.Marshal(struct {
		plain
		Data []Values `json:"data"`
	}{plain(c), c.Data()})
}

// AssembleCurve interpolates every quantity of sys at (temperature, nacl).
func AssembleCurve(g *grid.Grid, sys System, temperature, nacl float64) (ResultCurve, error) {
	curve := ResultCurve{
		System:      sys.ID,
		Temperature: temperature,
		NaCl:        nacl,
		Pressures:   g.Pressures,
	}
	for i := range curve.Series {
		curve.Series[i].Label = SlotLabels[i]
	}
	for i, q := range sys.Quantities {
		values, err := grid.Interpolate(g, q.Name, temperature, nacl)
		if err != nil {
			return ResultCurve{}, err
		}
		curve.Series[i] = Series{Name: q.Name, Label: q.Label, Available: true, Values: values}
	}
	return curve, nil
}

type Query struct {
	System      string  `json:"system"`
	Temperature float64 `json:"temp"`
	NaCl        float64 `json:"nacl"`
}

type Calculation struct {
	ID        int         `json:"id"`
	Requested Query       `json:"requested"`
	Query     Query       `json:"query"`
	Adjusted  bool        `json:"adjusted"`
	Notice    string      `json:"notice,omitempty"`
	Curve     ResultCurve `json:"curve"`
	CreatedAt time.Time   `json:"created_at"`
}

// Calculate clamps q to the system's bounds and assembles its curve.
func (s *Store) Calculate(q Query) (Calculation, error) {
	g, sys, err := s.Grid(q.System)
	if err != nil {
		return Calculation{}, err
	}
	temp, nacl, adjusted := ClampToBounds(sys, q.Temperature, q.NaCl)
	curve, err := AssembleCurve(g, sys, temp, nacl)
	if err != nil {
		return Calculation{}, err
	}

	calc := Calculation{
		Requested: q,
		Query:     Query{System: sys.ID, Temperature: temp, NaCl: nacl},
		Adjusted:  adjusted,
		Curve:     curve,
		CreatedAt: time.Now(),
	}
	metrics.Calculations.WithLabelValues(sys.ID).Inc()
	if adjusted {
		calc.Notice = BoundsNotice
		metrics.Adjustments.WithLabelValues(sys.ID).Inc()
	}
	return calc, nil
}
