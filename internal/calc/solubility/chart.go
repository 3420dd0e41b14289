package solubility

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Axis selects what a chart axis shows: pressure or one of the curve slots.
type Axis int

const (
	AxisPressure Axis = iota
	AxisSlot1
	AxisSlot2
	AxisSlot3
)

var axisLabels = [...]string{"P, bar", "xH2S+xCO2", "ρ, kg/m3", "λH2S"}

func ParseAxis(v int) (Axis, error) {
	if v < int(AxisPressure) || v > int(AxisSlot3) {
		return 0, fmt.Errorf("axis %d out of range 0-3", v)
	}
	return Axis(v), nil
}

func (a Axis) String() string {
	return axisLabels[a]
}

// Palette keys history entries by index.
var Palette = []color.RGBA{
	{200, 0, 0, 255},
	{0, 200, 0, 255},
	{0, 0, 200, 255},
	{150, 0, 0, 255},
	{0, 150, 0, 255},
	{0, 0, 150, 255},
	{250, 0, 0, 255},
	{0, 250, 0, 255},
	{0, 0, 250, 255},
}

func (a Axis) values(c ResultCurve) ([]float64, bool) {
	if a == AxisPressure {
		return c.Pressures, true
	}
	s := c.Series[a-1]
	return s.Values, s.Available
}

// RenderChart draws one line per curve as a PNG. Curves without the selected
// series are skipped, missing points are dropped.
func RenderChart(w io.Writer, title string, curves []ResultCurve, x, y Axis) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x.String()
	p.Y.Label.Text = y.String()
	p.Legend.Top = true

	for i, c := range curves {
		xs, okX := x.values(c)
		ys, okY := y.values(c)
		if !okX || !okY {
			continue
		}
		xy := make(plotter.XYs, 0, len(xs))
		for j := range xs {
			if math.IsNaN(xs[j]) || math.IsNaN(ys[j]) {
				continue
			}
			xy = append(xy, plotter.XY{X: xs[j], Y: ys[j]})
		}
		if len(xy) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(xy)
		if err != nil {
			return err
		}
		col := Palette[i%len(Palette)]
		line.Color = col
		points.Color = col
		points.Radius = vg.Points(1.5)
		p.Add(line, points)
		p.Legend.Add(fmt.Sprintf("Temp: %g, mNaCl: %g", c.Temperature, c.NaCl), line, points)
	}

	wt, err := p.WriterTo(8*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
