package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"unistats/internal/charts"
	"unistats/internal/config"
	"unistats/internal/dataprocessing"
	"unistats/pkg/contracts/domain"
)

// ObservationSource yields the long-format rows of a sheet.
type ObservationSource interface {
	Normalize(ctx context.Context, sheet string) ([]domain.Observation, error)
}

// ChartRenderer draws a chart as PNG.
type ChartRenderer interface {
	Render(w io.Writer, chart domain.Chart) error
}

// MacroQuery selects a category and the sources to compare on it.
type MacroQuery struct {
	Dimension string
	Category  string
	Sources   []string
	ShowAll   bool
}

// MicroQuery selects subcategories of a macro category and the one source
// paired with the focus source. A nil Subcategories means every available
// subcategory; a non-nil empty selection is honoured. An empty Compare
// picks the first other source.
type MicroQuery struct {
	Dimension     string
	Macro         string
	Subcategories []string
	Compare       string
}

// Micro view facet layout.
const (
	singleFacetHeight = 400
	gridFacetHeight   = 800
)

// DashboardService builds the interactive macro and micro views.
type DashboardService struct {
	source   ObservationSource
	dims     []domain.Dimension
	focus    string
	renderer ChartRenderer
	logger   *slog.Logger
}

// NewDashboardService creates a dashboard over the given dimensions.
func NewDashboardService(source ObservationSource, dims []domain.Dimension, focus string, renderer ChartRenderer, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if focus == "" {
		focus = config.DefaultFocusSource
	}
	return &DashboardService{
		source:   source,
		dims:     dims,
		focus:    focus,
		renderer: renderer,
		logger:   logger.With(slog.String("component", "dashboard_service")),
	}
}

// Focus returns the source that is always plotted.
func (s *DashboardService) Focus() string {
	return s.focus
}

// Dimensions returns the dimensions offered on the dashboard.
func (s *DashboardService) Dimensions() []domain.Dimension {
	out := make([]domain.Dimension, 0, len(s.dims))
	for _, d := range s.dims {
		if d.Interactive {
			out = append(out, d)
		}
	}
	return out
}

func (s *DashboardService) dimension(key string) (domain.Dimension, error) {
	dim, ok := config.FindDimension(s.dims, key)
	if !ok {
		return domain.Dimension{}, fmt.Errorf("%w: %s", ErrUnknownDimension, key)
	}
	if !dim.Interactive {
		return domain.Dimension{}, fmt.Errorf("%w: %s", ErrNotInteractive, key)
	}
	return dim, nil
}

func (s *DashboardService) load(ctx context.Context, key string) (domain.Dimension, []domain.Observation, error) {
	dim, err := s.dimension(key)
	if err != nil {
		return dim, nil, err
	}
	rows, err := s.source.Normalize(ctx, dim.Sheet)
	if err != nil {
		return dim, nil, fmt.Errorf("normalize %s: %w", dim.Sheet, err)
	}
	return dim, rows, nil
}

// Hierarchy returns the macro to micro mapping of a dimension. A declared
// hierarchy overrides inferred children per macro.
func (s *DashboardService) Hierarchy(ctx context.Context, key string) (domain.CategoryHierarchy, error) {
	dim, rows, err := s.load(ctx, key)
	if err != nil {
		return domain.CategoryHierarchy{}, err
	}
	return s.hierarchy(dim, rows), nil
}

func (s *DashboardService) hierarchy(dim domain.Dimension, rows []domain.Observation) domain.CategoryHierarchy {
	inferred := dataprocessing.BuildHierarchy(rows, dim.Macros)
	if declared, ok := dim.DeclaredHierarchy(); ok {
		return dataprocessing.ResolveHierarchy(inferred, declared)
	}
	return inferred
}

// Sources returns the sorted source identifiers that report the dimension.
func (s *DashboardService) Sources(ctx context.Context, key string) ([]string, error) {
	_, rows, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return charts.NewIndex(rows).Sources(), nil
}

// MacroView compares every selected source on one category. The focus
// source is always included. An empty selection or ShowAll selects every
// source reporting the category.
func (s *DashboardService) MacroView(ctx context.Context, q MacroQuery) (domain.MacroView, error) {
	dim, rows, err := s.load(ctx, q.Dimension)
	if err != nil {
		return domain.MacroView{}, err
	}
	h := s.hierarchy(dim, rows)

	category := q.Category
	if category == "" {
		if h.Len() == 0 {
			return domain.MacroView{
				Dimension: dim.Key,
				Sources:   []string{},
				Chart:     emptyChart(dim, ""),
				Message:   config.MsgNoData,
			}, nil
		}
		category = h.Macros[0]
	}

	filtered := filterCategories(rows, category)
	idx := charts.NewIndex(filtered)
	available := without(idx.Sources(), s.focus)

	selected := available
	if !q.ShowAll && len(q.Sources) > 0 {
		selected = intersect(normalizeSources(q.Sources), available)
	}
	selected = append([]string{s.focus}, selected...)

	view := domain.MacroView{
		Dimension: dim.Key,
		Category:  category,
		Sources:   selected,
		Chart: domain.Chart{
			Title:  fmt.Sprintf("%s for %s", dim.YLabel, category),
			XLabel: charts.YearLabel,
			YLabel: dim.YLabel,
			Series: []domain.Series{},
		},
	}
	for _, src := range selected {
		if !idx.Has(src, category) {
			continue
		}
		view.Chart.Series = append(view.Chart.Series, domain.Series{
			Name:   src,
			Label:  charts.DisplayName(src),
			Focus:  src == s.focus,
			Points: idx.Points(src, category),
		})
	}
	view.Chart.YMin, view.Chart.YMax = charts.YRange(view.Chart.Series)

	if view.Chart.Empty() {
		view.Message = config.MsgNoData
		s.logger.DebugContext(ctx, "macro view has no data",
			slog.String("dimension", dim.Key),
			slog.String("category", category))
	}
	return view, nil
}

// MicroView pairs the focus source with one comparison source across the
// subcategories of a macro category, one facet per subcategory.
func (s *DashboardService) MicroView(ctx context.Context, q MicroQuery) (domain.MicroView, error) {
	dim, rows, err := s.load(ctx, q.Dimension)
	if err != nil {
		return domain.MicroView{}, err
	}
	h := s.hierarchy(dim, rows)

	macro := q.Macro
	if macro == "" && h.Len() > 0 {
		macro = h.Macros[0]
	}
	view := domain.MicroView{
		Dimension:     dim.Key,
		Macro:         macro,
		Subcategories: []string{},
		Available:     []string{},
		Candidates:    []string{},
		Chart:         emptyChart(dim, macro),
	}
	if macro == "" {
		view.Message = config.MsgNoSubcategories
		return view, nil
	}
	if !h.Has(macro) {
		return domain.MicroView{}, fmt.Errorf("%w: %s", ErrUnknownCategory, macro)
	}

	view.Available = append(view.Available, h.Subcategories(macro)...)
	if len(view.Available) == 0 {
		view.Message = config.MsgNoSubcategories
		return view, nil
	}

	subs := view.Available
	if q.Subcategories != nil {
		subs = intersect(q.Subcategories, view.Available)
	}
	view.Subcategories = subs
	if len(subs) == 0 {
		view.Message = config.MsgSelectSubcategory
		return view, nil
	}

	idx := charts.NewIndex(filterCategories(rows, subs...))
	view.Candidates = without(idx.Sources(), s.focus)
	view.Compare = pickCompare(q.Compare, view.Candidates)

	plotted := []string{s.focus}
	if view.Compare != "" {
		plotted = append(plotted, view.Compare)
	}
	chart := &view.Chart
	chart.Facets = append([]string(nil), subs...)
	chart.FacetWrap = 1
	if len(subs) > 1 {
		chart.FacetWrap = 2
	}
	chart.Height = singleFacetHeight
	if len(subs) > 2 {
		chart.Height = gridFacetHeight
	}
	for _, sub := range subs {
		for _, src := range plotted {
			if !idx.Has(src, sub) {
				continue
			}
			chart.Series = append(chart.Series, domain.Series{
				Name:   src,
				Label:  charts.DisplayName(src),
				Focus:  src == s.focus,
				Facet:  sub,
				Points: idx.Points(src, sub),
			})
		}
	}
	chart.YMin, chart.YMax = charts.YRange(chart.Series)

	if chart.Empty() {
		view.Message = config.MsgNoData
	}
	return view, nil
}

// RenderMacro writes the macro view chart as PNG.
func (s *DashboardService) RenderMacro(ctx context.Context, q MacroQuery, w io.Writer) error {
	view, err := s.MacroView(ctx, q)
	if err != nil {
		return err
	}
	return s.render(ctx, view.Chart, w)
}

// RenderMicro writes the micro view chart as PNG.
func (s *DashboardService) RenderMicro(ctx context.Context, q MicroQuery, w io.Writer) error {
	view, err := s.MicroView(ctx, q)
	if err != nil {
		return err
	}
	return s.render(ctx, view.Chart, w)
}

func (s *DashboardService) render(ctx context.Context, chart domain.Chart, w io.Writer) error {
	if s.renderer == nil {
		return ErrServiceUnavailable
	}
	if err := s.renderer.Render(w, chart); err != nil {
		s.logger.ErrorContext(ctx, "chart rendering failed",
			slog.String("title", chart.Title),
			slog.String("error", err.Error()))
		return ErrRenderFailed
	}
	return nil
}

func emptyChart(dim domain.Dimension, category string) domain.Chart {
	title := dim.Title
	if category != "" {
		title = fmt.Sprintf("Comparison of Selected Subcategories under %s", category)
	}
	return domain.Chart{
		Title:  title,
		XLabel: charts.YearLabel,
		YLabel: dim.YLabel,
		YMax:   1,
		Series: []domain.Series{},
	}
}

func filterCategories(rows []domain.Observation, categories ...string) []domain.Observation {
	want := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		want[c] = struct{}{}
	}
	out := make([]domain.Observation, 0)
	for _, r := range rows {
		if _, ok := want[r.Category]; ok {
			out = append(out, r)
		}
	}
	return out
}

// normalizeSources accepts either identifiers or display names.
// pickCompare returns the requested source when it reports data, else the
// first candidate.
func pickCompare(requested string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	want := strings.ToLower(strings.TrimSpace(requested))
	for _, c := range candidates {
		if c == want {
			return c
		}
	}
	return candidates[0]
}

func normalizeSources(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}

// intersect keeps the entries of allowed that appear in picked, in the
// order of allowed.
func intersect(picked, allowed []string) []string {
	set := make(map[string]struct{}, len(picked))
	for _, p := range picked {
		set[p] = struct{}{}
	}
	out := make([]string, 0, len(allowed))
	for _, a := range allowed {
		if _, ok := set[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

func without(list []string, drop string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != drop {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
