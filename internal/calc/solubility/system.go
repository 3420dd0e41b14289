package solubility

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnknownSystem     = errors.New("unknown system")
	ErrSystemUnavailable = errors.New("system unavailable")
)

const (
	MinTemperature = 298.15
	MinNaCl        = 0.0

	// BoundsNotice is shown when a query was clamped.
	BoundsNotice = "Values adjusted to within acceptable bounds."
)

type Quantity struct {
	Name   string `json:"name"`
	Column string `json:"-"`
	Label  string `json:"label"`
}

// System is one chemical mixture with its own lookup table.
type System struct {
	ID             string     `json:"id"`
	Index          int        `json:"index"`
	Name           string     `json:"name"`
	Asset          string     `json:"-"`
	Quantities     []Quantity `json:"quantities"`
	MaxTemperature float64    `json:"max_temperature"`
	MaxNaCl        float64    `json:"max_nacl"`
}

// Labels of the three curve slots, in slot order.
var SlotLabels = [3]string{"xH2S+xCO2", "ρ kg/m3", "λH2S"}

var binaryQuantities = []Quantity{
	{Name: "xH2S", Column: "xH2S", Label: SlotLabels[0]},
	{Name: "density", Column: "r", Label: SlotLabels[1]},
	{Name: "lambdaH2S", Column: "H2S", Label: SlotLabels[2]},
}

var Systems = []System{
	{
		ID: "co2", Index: 0, Name: "CO₂-H₂O-NaCl", Asset: "block1.csv",
		Quantities: binaryQuantities, MaxTemperature: 373.15, MaxNaCl: 6,
	},
	{
		ID: "h2s", Index: 1, Name: "H₂S-H₂O-NaCl", Asset: "block2.csv",
		Quantities: binaryQuantities, MaxTemperature: 373.15, MaxNaCl: 6,
	},
	{
		ID: "co2-h2s", Index: 2, Name: "CO₂-H₂S-H₂O-NaCl", Asset: "block3.csv",
		Quantities: []Quantity{
			{Name: "xH2SplusCO2", Column: "xH2S+xCO2", Label: SlotLabels[0]},
		},
		MaxTemperature: 348.15, MaxNaCl: 4,
	},
}

// LookupSystem accepts a system id or its numeric index ("0", "1", "2").
func LookupSystem(id string) (System, error) {
	id = strings.TrimSpace(strings.ToLower(id))
	for _, s := range Systems {
		if s.ID == id || fmt.Sprint(s.Index) == id {
			return s, nil
		}
	}
	return System{}, fmt.Errorf("%w: %q", ErrUnknownSystem, id)
}

func (s System) columns() map[string]string {
	m := make(map[string]string, len(s.Quantities))
	for _, q := range s.Quantities {
		m[q.Name] = q.Column
	}
	return m
}

// ClampToBounds moves temperature and nacl into the system's valid range and
// reports whether anything changed. NaN is moved to the lower bound.
func ClampToBounds(s System, temperature, nacl float64) (float64, float64, bool) {
	adjusted := false
	if math.IsNaN(temperature) || temperature < MinTemperature {
		temperature = MinTemperature
		adjusted = true
	} else if temperature > s.MaxTemperature {
		temperature = s.MaxTemperature
		adjusted = true
	}
	if math.IsNaN(nacl) || nacl < MinNaCl {
		nacl = MinNaCl
		adjusted = true
	} else if nacl > s.MaxNaCl {
		nacl = s.MaxNaCl
		adjusted = true
	}
	return temperature, nacl, adjusted
}
