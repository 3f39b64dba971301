package charts

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"

	"unistats/pkg/contracts/domain"
)

func sampleSeries(name, facet string, focus bool, values ...domain.NullFloat) domain.Series {
	s := domain.Series{Name: name, Label: DisplayName(name), Focus: focus, Facet: facet}
	for i, v := range values {
		s.Points = append(s.Points, domain.Point{Period: []string{"2019", "2020", "2021"}[i], Value: v})
	}
	return s
}

func TestRenderSinglePanel(t *testing.T) {
	chart := domain.Chart{
		Title:  "Global Comparison - Graduate Students",
		XLabel: YearLabel,
		YLabel: "Students",
		Series: []domain.Series{
			sampleSeries("old dominion u", "", true, domain.Float(1), domain.Float(2), domain.Float(3)),
			sampleSeries("virginia tech", "", false, domain.Float(2), domain.Missing(), domain.Float(4)),
		},
		YMin: 0,
		YMax: 4.4,
	}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(4, 3).Render(&buf, chart))

	cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 384, cfg.Width)
	assert.Equal(t, 288, cfg.Height)
}

func TestRenderFacets(t *testing.T) {
	chart := domain.Chart{
		Title:     "Comparison of Selected Subcategories under Science",
		XLabel:    YearLabel,
		Facets:    []string{"Biology", "Physics", "Chemistry"},
		FacetWrap: 2,
		Height:    800,
		Series: []domain.Series{
			sampleSeries("old dominion u", "Biology", true, domain.Float(1), domain.Float(2)),
			sampleSeries("virginia tech", "Biology", false, domain.Float(3), domain.Float(1)),
			sampleSeries("old dominion u", "Physics", true, domain.Float(5)),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(6, 4).Render(&buf, chart))

	cfg, err := png.DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Height)
}

func TestRenderEmptyChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(4, 3).Render(&buf, domain.Chart{Title: "empty"}))
	assert.NotZero(t, buf.Len())
}

func TestSegments(t *testing.T) {
	pos := map[string]float64{"2019": 0, "2020": 1, "2021": 2, "2022": 3}
	points := []domain.Point{
		{Period: "2019", Value: domain.Float(1)},
		{Period: "2020", Value: domain.Missing()},
		{Period: "2021", Value: domain.Float(3)},
		{Period: "2022", Value: domain.Float(4)},
	}

	got := segments(points, pos)
	assert.Equal(t, []plotter.XYs{
		{{X: 0, Y: 1}},
		{{X: 2, Y: 3}, {X: 3, Y: 4}},
	}, got)
}
