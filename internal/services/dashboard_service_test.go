package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"unistats/internal/config"
	"unistats/internal/dataprocessing"
	"unistats/internal/shared/testutil"
	"unistats/pkg/contracts/domain"
)

const focus = "old dominion u"

func obs(source, category, period string, v float64) domain.Observation {
	return domain.Observation{SourceID: source, Category: category, Period: period, Value: domain.Float(v)}
}

func sourceRows() []domain.Observation {
	var rows []domain.Observation
	for _, src := range []string{focus, "george mason u", "virginia tech"} {
		scale := map[string]float64{focus: 1, "george mason u": 2, "virginia tech": 3}[src]
		for _, cat := range []string{"Total", "Fellowships", "Federal", "Institutional", "Loans"} {
			rows = append(rows,
				obs(src, cat, "2020", 10*scale),
				obs(src, cat, "2019", 20*scale),
			)
		}
	}
	return rows
}

func testDimensions() []domain.Dimension {
	return []domain.Dimension{
		{Key: "earned-doctorates", Sheet: "Earned Doctorates", Title: "Earned Doctorates"},
		{
			Key:         "source",
			Sheet:       "Source",
			Title:       "Source",
			YLabel:      "Full-time grad students",
			Macros:      []string{"Total", "Fellowships", "Loans"},
			Interactive: true,
		},
	}
}

func newDashboard(t *testing.T, rows []domain.Observation) (*DashboardService, *MockObservationSource) {
	t.Helper()
	source := &MockObservationSource{}
	source.On("Normalize", mock.Anything, "Source").Return(rows, nil)
	logger, _ := testutil.NewTestLogger(t)
	return NewDashboardService(source, testDimensions(), focus, nil, logger), source
}

func seriesNames(chart domain.Chart) []string {
	names := make([]string, 0, len(chart.Series))
	for _, s := range chart.Series {
		names = append(names, s.Name)
	}
	return names
}

func TestDashboardDimensions(t *testing.T) {
	svc, _ := newDashboard(t, nil)
	dims := svc.Dimensions()
	require.Len(t, dims, 1)
	assert.Equal(t, "source", dims[0].Key)
}

func TestDashboardUnknownDimension(t *testing.T) {
	svc, _ := newDashboard(t, nil)

	_, err := svc.Hierarchy(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownDimension)

	_, err = svc.MacroView(context.Background(), MacroQuery{Dimension: "earned-doctorates"})
	assert.ErrorIs(t, err, ErrNotInteractive)
}

func TestDashboardHierarchy(t *testing.T) {
	svc, source := newDashboard(t, sourceRows())

	h, err := svc.Hierarchy(context.Background(), "source")
	require.NoError(t, err)
	assert.Equal(t, []string{"Total", "Fellowships", "Loans"}, h.Macros)
	assert.Empty(t, h.Children["Total"])
	assert.Equal(t, []string{"Federal", "Institutional"}, h.Children["Fellowships"])
	assert.Equal(t, domain.HierarchyInferred, h.Origin)
	source.AssertExpectations(t)
}

func TestDashboardDeclaredHierarchyOverrides(t *testing.T) {
	source := &MockObservationSource{}
	source.On("Normalize", mock.Anything, "Source").Return(sourceRows(), nil)
	dims := testDimensions()
	dims[1].Hierarchy = map[string][]string{"Fellowships": {"Federal"}}
	svc := NewDashboardService(source, dims, focus, nil, nil)

	h, err := svc.Hierarchy(context.Background(), "source")
	require.NoError(t, err)
	assert.Equal(t, []string{"Federal"}, h.Children["Fellowships"])
	assert.Equal(t, domain.HierarchyMixed, h.Origin)
}

func TestDashboardSources(t *testing.T) {
	svc, _ := newDashboard(t, sourceRows())
	sources, err := svc.Sources(context.Background(), "source")
	require.NoError(t, err)
	assert.Equal(t, []string{"george mason u", focus, "virginia tech"}, sources)
}

func TestMacroViewWithoutDataDirectory(t *testing.T) {
	source := dataprocessing.NewNormalizer(filepath.Join(t.TempDir(), "absent"), nil)
	svc := NewDashboardService(source, testDimensions(), focus, nil, nil)

	view, err := svc.MacroView(context.Background(), MacroQuery{Dimension: "source"})
	require.NoError(t, err)
	assert.Equal(t, config.MsgNoData, view.Message)
	assert.Empty(t, view.Chart.Series)
}

func TestMacroView(t *testing.T) {
	tests := []struct {
		name    string
		query   MacroQuery
		want    []string
		message string
	}{
		{
			name:  "empty selection means every source",
			query: MacroQuery{Dimension: "source", Category: "Fellowships"},
			want:  []string{focus, "george mason u", "virginia tech"},
		},
		{
			name:  "focus forced into selection",
			query: MacroQuery{Dimension: "source", Category: "Fellowships", Sources: []string{"Virginia Tech"}},
			want:  []string{focus, "virginia tech"},
		},
		{
			name:  "show all ignores selection",
			query: MacroQuery{Dimension: "source", Category: "Fellowships", Sources: []string{"virginia tech"}, ShowAll: true},
			want:  []string{focus, "george mason u", "virginia tech"},
		},
		{
			name:  "category defaults to first macro",
			query: MacroQuery{Dimension: "source"},
			want:  []string{focus, "george mason u", "virginia tech"},
		},
		{
			name:    "unknown category has no data",
			query:   MacroQuery{Dimension: "source", Category: "Grants"},
			want:    []string{},
			message: config.MsgNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newDashboard(t, sourceRows())
			view, err := svc.MacroView(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, seriesNames(view.Chart))
			assert.Equal(t, tt.message, view.Message)
			assert.Contains(t, view.Sources, focus)
		})
	}
}

func TestMacroViewChart(t *testing.T) {
	svc, _ := newDashboard(t, sourceRows())
	view, err := svc.MacroView(context.Background(), MacroQuery{Dimension: "source", Category: "Total"})
	require.NoError(t, err)

	assert.Equal(t, "Full-time grad students for Total", view.Chart.Title)
	assert.Equal(t, "Year", view.Chart.XLabel)
	assert.Equal(t, 0.0, view.Chart.YMin)
	assert.InDelta(t, 66.0, view.Chart.YMax, 1e-9)

	require.NotEmpty(t, view.Chart.Series)
	first := view.Chart.Series[0]
	assert.True(t, first.Focus)
	assert.Equal(t, "Old Dominion U", first.Label)
	require.Len(t, first.Points, 2)
	assert.Equal(t, "2019", first.Points[0].Period)
	assert.Equal(t, "2020", first.Points[1].Period)
	for _, s := range view.Chart.Series[1:] {
		assert.False(t, s.Focus)
	}
}

func TestMicroView(t *testing.T) {
	tests := []struct {
		name    string
		query   MicroQuery
		subs    []string
		compare string
		wrap    int
		height  int
		message string
	}{
		{
			name:    "defaults pick first other source",
			query:   MicroQuery{Dimension: "source", Macro: "Fellowships"},
			subs:    []string{"Federal", "Institutional"},
			compare: "george mason u",
			wrap:    2,
			height:  400,
		},
		{
			name:    "single subcategory and comparison",
			query:   MicroQuery{Dimension: "source", Macro: "Fellowships", Subcategories: []string{"Federal"}, Compare: "Virginia Tech"},
			subs:    []string{"Federal"},
			compare: "virginia tech",
			wrap:    1,
			height:  400,
		},
		{
			name:    "unknown comparison falls back",
			query:   MicroQuery{Dimension: "source", Macro: "Fellowships", Compare: "nowhere u"},
			subs:    []string{"Federal", "Institutional"},
			compare: "george mason u",
			wrap:    2,
			height:  400,
		},
		{
			name:    "empty subcategory selection",
			query:   MicroQuery{Dimension: "source", Macro: "Fellowships", Subcategories: []string{}},
			subs:    []string{},
			message: config.MsgSelectSubcategory,
		},
		{
			name:    "macro without children",
			query:   MicroQuery{Dimension: "source", Macro: "Total"},
			subs:    []string{},
			message: config.MsgNoSubcategories,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newDashboard(t, sourceRows())
			view, err := svc.MicroView(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.subs, view.Subcategories)
			assert.Equal(t, tt.compare, view.Compare)
			assert.Equal(t, tt.message, view.Message)
			if tt.message == "" {
				assert.Equal(t, tt.wrap, view.Chart.FacetWrap)
				assert.Equal(t, tt.height, view.Chart.Height)
				assert.Equal(t, tt.subs, view.Chart.Facets)
				assert.Equal(t, "Comparison of Selected Subcategories under Fellowships", view.Chart.Title)
			}
		})
	}
}

func TestMicroViewSeriesPerFacet(t *testing.T) {
	svc, _ := newDashboard(t, sourceRows())
	view, err := svc.MicroView(context.Background(), MicroQuery{
		Dimension: "source",
		Macro:     "Fellowships",
		Compare:   "virginia tech",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"george mason u", "virginia tech"}, view.Candidates)
	require.Len(t, view.Chart.Series, 4)
	assert.Equal(t, "Federal", view.Chart.Series[0].Facet)
	assert.Equal(t, focus, view.Chart.Series[0].Name)
	assert.True(t, view.Chart.Series[0].Focus)
	assert.Equal(t, "virginia tech", view.Chart.Series[1].Name)
	assert.Equal(t, "Institutional", view.Chart.Series[2].Facet)
	for _, series := range view.Chart.Series {
		assert.NotEqual(t, "george mason u", series.Name)
	}
}

func TestMicroViewLargeGrid(t *testing.T) {
	source := &MockObservationSource{}
	var rows []domain.Observation
	for _, cat := range []string{"All", "A", "B", "C"} {
		rows = append(rows, obs(focus, cat, "2020", 1))
	}
	source.On("Normalize", mock.Anything, "Source").Return(rows, nil)
	dims := testDimensions()
	dims[1].Macros = []string{"All"}
	svc := NewDashboardService(source, dims, focus, nil, nil)

	view, err := svc.MicroView(context.Background(), MicroQuery{Dimension: "source", Macro: "All"})
	require.NoError(t, err)
	assert.Equal(t, 800, view.Chart.Height)
	assert.Equal(t, 2, view.Chart.FacetWrap)
	assert.Empty(t, view.Compare)
}

func TestMicroViewUnknownMacro(t *testing.T) {
	svc, _ := newDashboard(t, sourceRows())
	_, err := svc.MicroView(context.Background(), MicroQuery{Dimension: "source", Macro: "Grants"})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestDashboardNormalizeFailure(t *testing.T) {
	source := &MockObservationSource{}
	source.On("Normalize", mock.Anything, "Source").Return(nil, errors.New("disk gone"))
	svc := NewDashboardService(source, testDimensions(), focus, nil, nil)

	_, err := svc.MacroView(context.Background(), MacroQuery{Dimension: "source"})
	assert.ErrorContains(t, err, "disk gone")
}

func TestRenderMacro(t *testing.T) {
	source := &MockObservationSource{}
	source.On("Normalize", mock.Anything, "Source").Return(sourceRows(), nil)
	renderer := &MockChartRenderer{}
	renderer.On("Render", mock.Anything, mock.MatchedBy(func(c domain.Chart) bool {
		return c.Title == "Full-time grad students for Loans"
	})).Return(nil).Once()
	svc := NewDashboardService(source, testDimensions(), focus, renderer, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.RenderMacro(context.Background(), MacroQuery{Dimension: "source", Category: "Loans"}, &buf))
	renderer.AssertExpectations(t)
}

func TestRenderMicroFailure(t *testing.T) {
	source := &MockObservationSource{}
	source.On("Normalize", mock.Anything, "Source").Return(sourceRows(), nil)
	renderer := &MockChartRenderer{}
	renderer.On("Render", mock.Anything, mock.Anything).Return(errors.New("canvas"))
	logger, handler := testutil.NewTestLogger(t)
	svc := NewDashboardService(source, testDimensions(), focus, renderer, logger)

	var buf bytes.Buffer
	err := svc.RenderMicro(context.Background(), MicroQuery{Dimension: "source", Macro: "Fellowships"}, &buf)
	assert.ErrorIs(t, err, ErrRenderFailed)
	testutil.AssertLogContains(t, handler, slog.LevelError, "chart rendering failed")
}

func TestRenderWithoutRenderer(t *testing.T) {
	svc, _ := newDashboard(t, sourceRows())
	err := svc.RenderMacro(context.Background(), MacroQuery{Dimension: "source"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}
