// Package plotting renders comparison charts of simulated transformer days.
package plotting

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/kilianp07/gridwarden/core/model"
)

var (
	baseColor      = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	referenceColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	candidateColor = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	limitColor     = color.RGBA{A: 255}
)

// Options controls the chart size and the hot-spot limit line.
type Options struct {
	Width  vg.Length
	Height vg.Length
	// LimitC is drawn as a dashed reference line on the hot-spot panel.
	LimitC float64
}

// DefaultOptions returns a 10x8 inch chart with the 110 °C limit.
func DefaultOptions() Options {
	return Options{Width: 10 * vg.Inch, Height: 8 * vg.Inch, LimitC: 110}
}

// RenderComparison draws the mitigation chart of c as PNG: feeder load of
// both policies over the base load on top, hot-spot temperatures below.
func RenderComparison(w io.Writer, c model.Comparison, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		d := DefaultOptions()
		opts.Width, opts.Height = d.Width, d.Height
	}
	loadPlot, err := loadPanel(c)
	if err != nil {
		return err
	}
	heatPlot, err := heatPanel(c, opts.LimitC)
	if err != nil {
		return err
	}

	img := vgimg.New(opts.Width, opts.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 2, Cols: 1, PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 2, PadY: vg.Millimeter * 6}
	canvases := plot.Align([][]*plot.Plot{{loadPlot}, {heatPlot}}, tiles, dc)
	loadPlot.Draw(canvases[0][0])
	heatPlot.Draw(canvases[1][0])

	png := vgimg.PngCanvas{Canvas: img}
	_, err = png.WriteTo(w)
	return err
}

// SaveComparison renders the chart into the file at path.
func SaveComparison(path string, c model.Comparison, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderComparison(f, c, opts); err != nil {
		_ = f.Close()
		return fmt.Errorf("render chart: %w", err)
	}
	return f.Close()
}

func loadPanel(c model.Comparison) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Peak reduction %.1f%% (%s vs %s)",
		c.PeakReductionPercent, c.Candidate.Policy, c.Reference.Policy)
	p.X.Label.Text = "Hour"
	p.Y.Label.Text = "Feeder load (MW)"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	series := []struct {
		label string
		prof  model.Profile
		col   color.Color
		dash  bool
	}{
		{"Base load", c.Reference.BaseLoad, baseColor, true},
		{c.Reference.Policy.String(), c.Reference.TotalLoad, referenceColor, false},
		{c.Candidate.Policy.String(), c.Candidate.TotalLoad, candidateColor, false},
	}
	for _, s := range series {
		l, err := plotter.NewLine(profileXYs(s.prof))
		if err != nil {
			return nil, err
		}
		l.Color = s.col
		l.Width = vg.Points(2)
		if s.dash {
			l.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		}
		p.Add(l)
		p.Legend.Add(s.label, l)
	}
	p.X.Min, p.X.Max = 0, model.HoursPerDay-1
	return p, nil
}

func heatPanel(c model.Comparison, limitC float64) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "Hour"
	p.Y.Label.Text = "Hot spot (°C)"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	for _, s := range []struct {
		run model.SimulationRun
		col color.Color
	}{{c.Reference, referenceColor}, {c.Candidate, candidateColor}} {
		l, err := plotter.NewLine(profileXYs(s.run.HotSpots()))
		if err != nil {
			return nil, err
		}
		l.Color = s.col
		l.Width = vg.Points(2)
		p.Add(l)
		p.Legend.Add(s.run.Policy.String(), l)
	}
	if limitC > 0 {
		limit := plotter.NewFunction(func(float64) float64 { return limitC })
		limit.Color = limitColor
		limit.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		p.Add(limit)
		p.Legend.Add(fmt.Sprintf("%.0f °C limit", limitC), limit)
		if p.Y.Max < limitC+5 {
			p.Y.Max = limitC + 5
		}
	}
	p.X.Min, p.X.Max = 0, model.HoursPerDay-1
	return p, nil
}

func profileXYs(p model.Profile) plotter.XYs {
	pts := make(plotter.XYs, len(p))
	for h, v := range p {
		pts[h].X = float64(h)
		pts[h].Y = v
	}
	return pts
}
