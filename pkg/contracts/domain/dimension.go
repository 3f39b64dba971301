package domain

// Dimension is one analysis domain backed by a sheet that every source
// workbook carries.
type Dimension struct {
	Key    string `json:"key" yaml:"key"`
	Sheet  string `json:"sheet" yaml:"sheet"`
	Title  string `json:"title" yaml:"title"`
	YLabel string `json:"y_label" yaml:"y_label"`

	// Macros lists the top-level categories used to partition the sheet's
	// category labels.
	Macros []string `json:"macros,omitempty" yaml:"macros"`

	// Global lists the categories drawn on the cross-source comparison
	// chart. With SumGlobal the categories are added into a single line per
	// source.
	Global    []string `json:"global,omitempty" yaml:"global"`
	SumGlobal bool     `json:"sum_global,omitempty" yaml:"sum_global"`

	// Individual lists the categories drawn on each per-source chart.
	Individual []string `json:"individual,omitempty" yaml:"individual"`

	// Interactive dimensions are offered on the dashboard page.
	Interactive bool `json:"interactive" yaml:"interactive"`

	// Hierarchy optionally declares macro children explicitly instead of
	// inferring them from row order.
	Hierarchy map[string][]string `json:"hierarchy,omitempty" yaml:"hierarchy"`
}

// DeclaredHierarchy returns the declared hierarchy ordered by Macros, then
// by any declared macro not listed in Macros in sorted order. ok is false
// when nothing is declared.
func (d Dimension) DeclaredHierarchy() (CategoryHierarchy, bool) {
	if len(d.Hierarchy) == 0 {
		return CategoryHierarchy{}, false
	}
	h := NewCategoryHierarchy(HierarchyDeclared)
	for _, macro := range d.Macros {
		if children, ok := d.Hierarchy[macro]; ok {
			h.Add(macro, append([]string(nil), children...))
		}
	}
	for _, macro := range sortedKeys(d.Hierarchy) {
		if !h.Has(macro) {
			h.Add(macro, append([]string(nil), d.Hierarchy[macro]...))
		}
	}
	return h, true
}
