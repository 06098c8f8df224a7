package plotting

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Figure is a single row of side-by-side panels sharing one canvas, the
// comparison layout used throughout this package.
type Figure struct {
	Panels      []*plot.Plot
	PanelWidth  vg.Length
	PanelHeight vg.Length
}

// newFigure allocates a row figure with one styled panel per title.
func newFigure(titles []string, width, height vg.Length) *Figure {
	f := &Figure{
		Panels:      make([]*plot.Plot, len(titles)),
		PanelWidth:  width,
		PanelHeight: height,
	}
	for i, title := range titles {
		p := plot.New()
		p.Title.Text = title
		f.Panels[i] = p
	}
	return f
}

// Save renders the panels side by side and writes the figure as a PNG.
func (f *Figure) Save(path string) error {
	if len(f.Panels) == 0 {
		return fmt.Errorf("figure has no panels")
	}

	img := vgimg.New(f.PanelWidth*vg.Length(len(f.Panels)), f.PanelHeight)
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows: 1,
		Cols: len(f.Panels),
		PadX: vg.Millimeter * 2,
	}
	canvases := plot.Align([][]*plot.Plot{f.Panels}, tiles, dc)
	for i, p := range f.Panels {
		p.Draw(canvases[0][i])
	}

	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create figure file: %w", err)
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		w.Close()
		return fmt.Errorf("write figure: %w", err)
	}
	return w.Close()
}

var (
	zeroLineColor  = color.Gray{Y: 0x80}
	markLineColor  = color.Black
	zeroLineWidth  = vg.Points(0.5)
	crossingDashes = []vg.Length{vg.Points(2), vg.Points(6)}
)
