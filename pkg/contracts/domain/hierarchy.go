package domain

// HierarchyOrigin records how a hierarchy was obtained.
type HierarchyOrigin string

const (
	HierarchyInferred HierarchyOrigin = "inferred"
	HierarchyDeclared HierarchyOrigin = "declared"
	HierarchyMixed    HierarchyOrigin = "mixed"
)

// CategoryHierarchy maps macro categories to their ordered micro
// categories. Macros keeps the order in which macros were found.
type CategoryHierarchy struct {
	Macros   []string            `json:"macros"`
	Children map[string][]string `json:"children"`
	Origin   HierarchyOrigin     `json:"origin"`
}

// NewCategoryHierarchy returns an empty hierarchy.
func NewCategoryHierarchy(origin HierarchyOrigin) CategoryHierarchy {
	return CategoryHierarchy{
		Macros:   []string{},
		Children: map[string][]string{},
		Origin:   origin,
	}
}

// Add appends a macro and its children. Re-adding a macro replaces its
// children but keeps its original position.
func (h *CategoryHierarchy) Add(macro string, children []string) {
	if h.Children == nil {
		h.Children = map[string][]string{}
	}
	if _, ok := h.Children[macro]; !ok {
		h.Macros = append(h.Macros, macro)
	}
	if children == nil {
		children = []string{}
	}
	h.Children[macro] = children
}

// Has reports whether macro has an entry.
func (h CategoryHierarchy) Has(macro string) bool {
	_, ok := h.Children[macro]
	return ok
}

// Subcategories returns the micro categories of macro, or nil.
func (h CategoryHierarchy) Subcategories(macro string) []string {
	return h.Children[macro]
}

// Len is the number of macros.
func (h CategoryHierarchy) Len() int {
	return len(h.Macros)
}
