package domain

import "sort"

// Point is one value of a series.
type Point struct {
	Period string    `json:"year"`
	Value  NullFloat `json:"value"`
}

// Series is a line on a chart.
type Series struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Focus  bool    `json:"focus"`
	Facet  string  `json:"facet,omitempty"`
	Points []Point `json:"points"`
}

// Chart is everything a renderer needs to draw a line chart.
type Chart struct {
	Title  string   `json:"title"`
	XLabel string   `json:"x_label"`
	YLabel string   `json:"y_label"`
	YMin   float64  `json:"y_min"`
	YMax   float64  `json:"y_max"`
	Series []Series `json:"series"`

	// Facets lists panel titles in display order. Empty means a single
	// panel holding every series.
	Facets    []string `json:"facets,omitempty"`
	FacetWrap int      `json:"facet_wrap,omitempty"`
	Height    int      `json:"height,omitempty"`
}

// Empty reports whether no series has a present value.
func (c Chart) Empty() bool {
	for _, s := range c.Series {
		for _, p := range s.Points {
			if p.Value.Valid {
				return false
			}
		}
	}
	return true
}

// MacroView is the cross-source comparison of one category.
type MacroView struct {
	Dimension string   `json:"dimension"`
	Category  string   `json:"category"`
	Sources   []string `json:"sources"`
	Chart     Chart    `json:"chart"`
	Message   string   `json:"message,omitempty"`
}

// MicroView compares the focus source with one other source across the
// subcategories of one macro category. Candidates lists the sources that
// can be picked for Compare.
type MicroView struct {
	Dimension     string   `json:"dimension"`
	Macro         string   `json:"macro"`
	Subcategories []string `json:"subcategories"`
	Available     []string `json:"available"`
	Compare       string   `json:"compare"`
	Candidates    []string `json:"candidates"`
	Chart         Chart    `json:"chart"`
	Message       string   `json:"message,omitempty"`
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
