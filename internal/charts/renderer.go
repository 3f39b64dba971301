package charts

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"unistats/pkg/contracts/domain"
)

var focusColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}

const titleBand = 28

// Renderer draws charts as PNG line plots. The focus series is drawn solid
// and wide, every other series dashed and thin.
type Renderer struct {
	width  vg.Length
	height vg.Length
}

// NewRenderer creates a renderer producing images of the given size in
// inches.
func NewRenderer(widthInches, heightInches float64) *Renderer {
	return &Renderer{
		width:  vg.Length(widthInches) * vg.Inch,
		height: vg.Length(heightInches) * vg.Inch,
	}
}

// Render writes chart to w as PNG. Charts with facets are drawn as a grid
// of panels, FacetWrap panels per row. A positive Height, in pixels,
// overrides the default image height.
func (r *Renderer) Render(w io.Writer, chart domain.Chart) error {
	height := r.height
	if chart.Height > 0 {
		height = vg.Length(chart.Height) * vg.Inch / vg.Length(vgimg.DefaultDPI)
	}

	img := vgimg.New(r.width, height)
	dc := draw.New(img)

	if len(chart.Facets) == 0 {
		p, err := r.panel(chart, chart.Title, chart.Series)
		if err != nil {
			return err
		}
		p.Draw(dc)
	} else if err := r.drawFacets(dc, chart); err != nil {
		return err
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (r *Renderer) drawFacets(dc draw.Canvas, chart domain.Chart) error {
	cols := chart.FacetWrap
	if cols <= 0 {
		cols = 1
	}
	rows := (len(chart.Facets) + cols - 1) / cols

	grid := make([][]*plot.Plot, rows)
	for i := range grid {
		grid[i] = make([]*plot.Plot, cols)
		for j := range grid[i] {
			n := i*cols + j
			if n >= len(chart.Facets) {
				blank := plot.New()
				blank.HideAxes()
				grid[i][j] = blank
				continue
			}
			facet := chart.Facets[n]
			var series []domain.Series
			for _, s := range chart.Series {
				if s.Facet == facet {
					series = append(series, s)
				}
			}
			p, err := r.panel(chart, facet, series)
			if err != nil {
				return err
			}
			grid[i][j] = p
		}
	}

	header := plot.New()
	sty := header.Title.TextStyle
	sty.Font.Size = vg.Points(14)
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YTop
	dc.FillText(sty, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - vg.Points(4)}, chart.Title)

	body := draw.Crop(dc, 0, 0, 0, -vg.Points(titleBand))
	tiles := draw.Tiles{
		Rows: rows,
		Cols: cols,
		PadX: vg.Millimeter * 4,
		PadY: vg.Millimeter * 4,
	}
	canvases := plot.Align(grid, tiles, body)
	for i := range grid {
		for j := range grid[i] {
			grid[i][j].Draw(canvases[i][j])
		}
	}
	return nil
}

// panel builds one plot. Periods become nominal x positions shared by
// every series, and missing values break a line into segments.
func (r *Renderer) panel(chart domain.Chart, title string, series []domain.Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = chart.XLabel
	p.Y.Label.Text = chart.YLabel
	p.Legend.Top = true

	periods := periodsOf(series)
	pos := make(map[string]float64, len(periods))
	for i, period := range periods {
		pos[period] = float64(i)
	}
	if len(periods) > 0 {
		p.NominalX(periods...)
	}

	p.Add(plotter.NewGrid())

	for i, s := range series {
		lineColor := plotutil.Color(i)
		if s.Focus {
			lineColor = focusColor
		}

		var thumb plot.Thumbnailer
		for _, seg := range segments(s.Points, pos) {
			if len(seg) == 1 {
				dot, err := plotter.NewScatter(seg)
				if err != nil {
					return nil, fmt.Errorf("series %q: %w", s.Name, err)
				}
				dot.GlyphStyle.Color = lineColor
				dot.GlyphStyle.Shape = draw.CircleGlyph{}
				dot.GlyphStyle.Radius = vg.Points(2.5)
				p.Add(dot)
				if thumb == nil {
					thumb = dot
				}
				continue
			}

			line, err := plotter.NewLine(seg)
			if err != nil {
				return nil, fmt.Errorf("series %q: %w", s.Name, err)
			}
			line.Color = lineColor
			if s.Focus {
				line.Width = vg.Points(4)
			} else {
				line.Width = vg.Points(1.5)
				line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
			}
			p.Add(line)
			if thumb == nil {
				thumb = line
			}
		}

		if thumb != nil {
			label := s.Label
			if label == "" {
				label = s.Name
			}
			p.Legend.Add(label, thumb)
		}
	}

	if chart.YMax > chart.YMin {
		p.Y.Min = chart.YMin
		p.Y.Max = chart.YMax
	}

	return p, nil
}

func periodsOf(series []domain.Series) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range series {
		for _, pt := range s.Points {
			if _, ok := seen[pt.Period]; !ok {
				seen[pt.Period] = struct{}{}
				out = append(out, pt.Period)
			}
		}
	}
	SortPeriods(out)
	return out
}

func segments(points []domain.Point, pos map[string]float64) []plotter.XYs {
	var (
		out []plotter.XYs
		cur plotter.XYs
	)
	for _, pt := range points {
		if !pt.Value.Valid {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: pos[pt.Period], Y: pt.Value.Float})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
