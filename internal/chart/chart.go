// Package chart renders amino-acid composition vectors as bar charts.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"proteinstruct/internal/protein"
)

// BarColor is the fill used for composition bars.
var BarColor = color.RGBA{R: 0x00, G: 0x7a, B: 0xcc, A: 0xff}

// Default canvas size, in the 8x3 inch proportions of the web view.
const (
	Width  = 8 * vg.Inch
	Height = 3 * vg.Inch
)

// Composition builds the bar chart plot for c.
func Composition(title string, c protein.Composition) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "%"
	p.Y.Min = 0

	values := make(plotter.Values, len(c))
	copy(values, c[:])
	bars, err := plotter.NewBarChart(values, vg.Points(14))
	if err != nil {
		return nil, fmt.Errorf("composition bars: %w", err)
	}
	bars.Color = BarColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(c.Labels()...)
	return p, nil
}

// WriteComposition renders the composition chart to w. format is any
// extension understood by gonum plot, e.g. "svg" or "png".
func WriteComposition(w io.Writer, title string, c protein.Composition, format string) error {
	p, err := Composition(title, c)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(Width, Height, format)
	if err != nil {
		return fmt.Errorf("composition %s canvas: %w", format, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// CompositionSVG renders the chart as an SVG document.
func CompositionSVG(title string, c protein.Composition) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteComposition(&buf, title, c, "svg"); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Title is the chart heading used for a record.
func Title(r protein.Record) string {
	return "Amino Acid Composition - " + r.Accession
}
