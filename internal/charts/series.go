package charts

import (
	"log/slog"
	"sort"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"unistats/pkg/contracts/domain"
)

// YearLabel is the x-axis label of every chart.
const YearLabel = "Year"

// TotalPostdoctoratesLabel names the summed global series.
const TotalPostdoctoratesLabel = "Total postdoctorates"

// DisplayName title-cases a source identifier for legends:
// "old dominion u" becomes "Old Dominion U".
func DisplayName(source string) string {
	return cases.Title(language.English).String(source)
}

// Index gives constant-time access to observations by source, category
// and period. When a category repeats within a source, the first present
// value of a period wins.
type Index struct {
	values     map[indexKey]domain.NullFloat
	sources    []string
	periods    []string
	categories map[string]map[string]struct{}
}

type indexKey struct {
	source, category, period string
}

// NewIndex indexes rows.
func NewIndex(rows []domain.Observation) *Index {
	idx := &Index{
		values:     make(map[indexKey]domain.NullFloat, len(rows)),
		categories: make(map[string]map[string]struct{}),
	}
	periods := make(map[string]struct{})
	for _, r := range rows {
		cats, ok := idx.categories[r.SourceID]
		if !ok {
			cats = make(map[string]struct{})
			idx.categories[r.SourceID] = cats
			idx.sources = append(idx.sources, r.SourceID)
		}
		cats[r.Category] = struct{}{}
		if _, ok := periods[r.Period]; !ok {
			periods[r.Period] = struct{}{}
			idx.periods = append(idx.periods, r.Period)
		}

		k := indexKey{r.SourceID, r.Category, r.Period}
		if cur, ok := idx.values[k]; !ok || (!cur.Valid && r.Value.Valid) {
			idx.values[k] = r.Value
		}
	}
	sort.Strings(idx.sources)
	SortPeriods(idx.periods)
	return idx
}

// Sources returns the source identifiers in sorted order.
func (x *Index) Sources() []string {
	return append([]string(nil), x.sources...)
}

// Periods returns every period in chronological order.
func (x *Index) Periods() []string {
	return append([]string(nil), x.periods...)
}

// Has reports whether source reports category at all.
func (x *Index) Has(source, category string) bool {
	_, ok := x.categories[source][category]
	return ok
}

// Value returns the value of category for source in period.
func (x *Index) Value(source, category, period string) domain.NullFloat {
	return x.values[indexKey{source, category, period}]
}

// Points returns one point per period for category of source.
func (x *Index) Points(source, category string) []domain.Point {
	pts := make([]domain.Point, 0, len(x.periods))
	for _, p := range x.periods {
		pts = append(pts, domain.Point{Period: p, Value: x.Value(source, category, p)})
	}
	return pts
}

// SumPoints adds several categories per period, skipping missing cells.
// A period the source reports only as missing values sums to 0; a period
// the source has no rows for stays missing.
func (x *Index) SumPoints(source string, categories []string) []domain.Point {
	pts := make([]domain.Point, 0, len(x.periods))
	for _, p := range x.periods {
		total, reported := 0.0, false
		for _, c := range categories {
			v, ok := x.values[indexKey{source, c, p}]
			if !ok {
				continue
			}
			reported = true
			if v.Valid {
				total += v.Float
			}
		}
		v := domain.Missing()
		if reported {
			v = domain.Float(total)
		}
		pts = append(pts, domain.Point{Period: p, Value: v})
	}
	return pts
}

// SortPeriods orders periods numerically when they all parse as numbers,
// lexically otherwise.
func SortPeriods(periods []string) {
	numeric := true
	for _, p := range periods {
		if _, err := strconv.ParseFloat(p, 64); err != nil {
			numeric = false
			break
		}
	}
	sort.SliceStable(periods, func(i, j int) bool {
		if numeric {
			a, _ := strconv.ParseFloat(periods[i], 64)
			b, _ := strconv.ParseFloat(periods[j], 64)
			return a < b
		}
		return periods[i] < periods[j]
	})
}

// YRange returns [0, max*1.1] over the present values of the chart, or
// [0, 1] when nothing is present.
func YRange(series []domain.Series) (float64, float64) {
	top := 0.0
	for _, s := range series {
		for _, p := range s.Points {
			if p.Value.Valid && p.Value.Float > top {
				top = p.Value.Float
			}
		}
	}
	if top <= 0 {
		return 0, 1
	}
	return 0, top * 1.1
}

// GlobalChart compares every source on the dimension's global category.
// With SumGlobal the global categories are added per period, and a source
// lacking any of them is left out. Sources lacking the category are
// logged and left out.
func GlobalChart(dim domain.Dimension, rows []domain.Observation, focus string, logger *slog.Logger) domain.Chart {
	if logger == nil {
		logger = slog.Default()
	}
	idx := NewIndex(rows)
	chart := domain.Chart{
		Title:  "Global Comparison - " + dim.Sheet,
		XLabel: YearLabel,
		YLabel: dim.YLabel,
		Series: []domain.Series{},
	}
	if len(dim.Global) == 0 {
		return chart
	}

	for _, source := range idx.Sources() {
		missing := ""
		for _, c := range dim.Global {
			if !idx.Has(source, c) {
				missing = c
				break
			}
			if !dim.SumGlobal {
				break
			}
		}
		if missing != "" {
			logger.Warn("category not found, skipping source",
				slog.String("sheet", dim.Sheet),
				slog.String("source", source),
				slog.String("category", missing))
			continue
		}

		s := domain.Series{
			Name:  source,
			Label: DisplayName(source),
			Focus: source == focus,
		}
		if dim.SumGlobal {
			s.Points = idx.SumPoints(source, dim.Global)
		} else {
			s.Points = idx.Points(source, dim.Global[0])
		}
		chart.Series = append(chart.Series, s)
	}

	chart.YMin, chart.YMax = YRange(chart.Series)
	return chart
}

// IndividualChart draws the dimension's individual categories for one
// source. Categories the source does not report are returned in missing.
func IndividualChart(dim domain.Dimension, source string, rows []domain.Observation) (chart domain.Chart, missing []string) {
	idx := NewIndex(rows)
	chart = domain.Chart{
		Title:  DisplayName(source) + " - " + dim.Sheet,
		XLabel: YearLabel,
		YLabel: dim.YLabel,
		Series: []domain.Series{},
	}
	for _, c := range dim.Individual {
		if !idx.Has(source, c) {
			missing = append(missing, c)
			continue
		}
		chart.Series = append(chart.Series, domain.Series{
			Name:   c,
			Label:  c,
			Points: idx.Points(source, c),
		})
	}
	chart.YMin, chart.YMax = YRange(chart.Series)
	return chart, missing
}
