// Package chart renders sampled longitude traces as PNG images.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/signalsfoundry/longitude/core"
	"github.com/signalsfoundry/longitude/model"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrEmptySeries is returned for reports that carry no samples, such as a
// zero-length range.
var ErrEmptySeries = errors.New("chart: report has no samples")

var (
	directColor     = color.RGBA{R: 30, G: 110, B: 200, A: 255}
	retrogradeColor = color.RGBA{R: 210, G: 60, B: 40, A: 255}
	stationColor    = color.RGBA{A: 255}
)

// Default output size.
const (
	Width  = 14 * vg.Inch
	Height = 6 * vg.Inch
)

// New builds the longitude trace for rep: direct and retrograde samples in
// separate colors and refined sign changes as crosses. X values are Unix
// seconds rendered as dates.
func New(rep core.Report) (*plot.Plot, error) {
	if len(rep.Series) == 0 {
		return nil, ErrEmptySeries
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s longitude (%s, %s)", rep.Body, rep.Frame, rep.Policy)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Longitude (°)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Y.Min = 0
	p.Y.Max = 360
	p.Add(plotter.NewGrid())

	direct, retro := split(rep.Series)
	if err := addScatter(p, "direct", direct, directColor, draw.CircleGlyph{}); err != nil {
		return nil, err
	}
	if err := addScatter(p, "retrograde", retro, retrogradeColor, draw.CircleGlyph{}); err != nil {
		return nil, err
	}
	if err := addScatter(p, "sign change", toXYs(rep.Stations), stationColor, draw.CrossGlyph{}); err != nil {
		return nil, err
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// Render writes rep's trace to w as PNG.
func Render(w io.Writer, rep core.Report) error {
	p, err := New(rep)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save writes rep's trace to path, creating parent directories. The image
// format follows the file extension.
func Save(path string, rep core.Report) error {
	p, err := New(rep)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := p.Save(Width, Height, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

func split(series []model.Sample) (direct, retro plotter.XYs) {
	for _, s := range series {
		pt := plotter.XY{X: float64(s.Time.Unix()), Y: s.Longitude}
		if s.Direct() {
			direct = append(direct, pt)
		} else {
			retro = append(retro, pt)
		}
	}
	return direct, retro
}

func toXYs(samples []model.Sample) plotter.XYs {
	pts := make(plotter.XYs, 0, len(samples))
	for _, s := range samples {
		pts = append(pts, plotter.XY{X: float64(s.Time.Unix()), Y: s.Longitude})
	}
	return pts
}

func addScatter(p *plot.Plot, label string, pts plotter.XYs, c color.Color, shape draw.GlyphDrawer) error {
	if len(pts) == 0 {
		return nil
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = c
	sc.GlyphStyle.Radius = vg.Points(2)
	sc.GlyphStyle.Shape = shape
	p.Add(sc)
	p.Legend.Add(label, sc)
	return nil
}
