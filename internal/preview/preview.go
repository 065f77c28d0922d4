package preview

import (
	"bytes"
	"fmt"
	"image/color"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Options controls the rendered chart.
type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	// Format is any image format supported by gonum/plot, such as "png" or "svg".
	Format string
	// Label names a direction code in the legend.
	Label func(code int) string
}

// DefaultOptions returns an 800x400 point PNG chart.
func DefaultOptions() Options {
	return Options{
		Title:  "Extracted windows",
		Width:  vg.Points(800),
		Height: vg.Points(400),
		Format: "png",
	}
}

var palette = []color.Color{
	color.RGBA{R: 128, G: 128, B: 128, A: 255}, // Other
	color.RGBA{R: 255, A: 255},
	color.RGBA{G: 160, A: 255},
	color.RGBA{B: 255, A: 255},
	color.RGBA{R: 255, G: 165, A: 255},
	color.RGBA{R: 128, B: 128, A: 255},
	color.RGBA{G: 128, B: 128, A: 255},
	color.RGBA{R: 139, G: 69, B: 19, A: 255},
}

// Render draws every extracted row as one line. The leading code column is
// dropped and selects the line colour; x is the position within the
// flattened three-column window.
func Render(rows mat.Matrix, opts Options) ([]byte, error) {
	n, width := rows.Dims()
	if n == 0 || width < 2 {
		return nil, fmt.Errorf("no extracted rows to plot")
	}
	if opts.Format == "" {
		opts.Format = "png"
	}
	if opts.Width == 0 || opts.Height == 0 {
		def := DefaultOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Window sample"
	p.Y.Label.Text = "Value"
	p.Add(plotter.NewGrid())

	var legendCodes []int
	for i := range n {
		code := int(rows.At(i, 0))
		pts := make(plotter.XYs, 0, width-1)
		for j := 1; j < width; j++ {
			pts = append(pts, plotter.XY{X: float64(j), Y: rows.At(i, j)})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		line.Color = colorFor(code)
		line.LineStyle.Width = vg.Points(1)
		p.Add(line)

		if !slices.Contains(legendCodes, code) {
			legendCodes = append(legendCodes, code)
			p.Legend.Add(legendLabel(opts, code), line)
		}
	}

	// Mark the boundaries between the three source columns.
	samples := (width - 1) / 3
	if samples > 0 {
		for k := 1; k < 3; k++ {
			x := float64(k*samples) + 0.5
			marker, err := plotter.NewLine(plotter.XYs{{X: x, Y: p.Y.Min}, {X: x, Y: p.Y.Max}})
			if err == nil {
				marker.Color = color.Gray{Y: 160}
				marker.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
				p.Add(marker)
			}
		}
	}

	p.Legend.Top = true

	writer, err := p.WriterTo(opts.Width, opts.Height, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("create plot writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write plot: %w", err)
	}
	return buf.Bytes(), nil
}

func colorFor(code int) color.Color {
	if code < 0 {
		code = -code
	}
	return palette[code%len(palette)]
}

func legendLabel(opts Options, code int) string {
	if opts.Label != nil {
		if label := opts.Label(code); label != "" {
			return label
		}
	}
	return "code " + strconv.Itoa(code)
}
