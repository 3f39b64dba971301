package dataprocessing

import "unistats/pkg/contracts/domain"

// DistinctCategories returns the categories of the reference source in
// first-seen order. The reference source is the source of the first row.
func DistinctCategories(rows []domain.Observation) []string {
	if len(rows) == 0 {
		return []string{}
	}
	ref := rows[0].SourceID

	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range rows {
		if r.SourceID != ref {
			continue
		}
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}

// BuildHierarchy partitions the reference source's categories into macro
// groups. Each macro present in the data owns the labels strictly between
// it and the next present macro, or the end of the list. Macros absent from
// the data get no entry; labels before the first present macro belong to
// nobody.
func BuildHierarchy(rows []domain.Observation, macros []string) domain.CategoryHierarchy {
	h := domain.NewCategoryHierarchy(domain.HierarchyInferred)

	order := DistinctCategories(rows)
	index := make(map[string]int, len(order))
	for i, c := range order {
		index[c] = i
	}

	positions := make([]int, 0, len(macros)+1)
	for _, m := range macros {
		if i, ok := index[m]; ok {
			positions = append(positions, i)
		}
	}
	positions = append(positions, len(order))

	for i := 0; i < len(positions)-1; i++ {
		start, next := positions[i], positions[i+1]
		children := []string{}
		if next > start+1 {
			children = append(children, order[start+1:next]...)
		}
		h.Add(order[start], children)
	}

	return h
}

// ResolveHierarchy overlays a declared hierarchy on an inferred one.
// Declared children replace inferred children macro by macro; declared
// macros unknown to the data are appended in declared order.
func ResolveHierarchy(inferred, declared domain.CategoryHierarchy) domain.CategoryHierarchy {
	if declared.Len() == 0 {
		return inferred
	}
	if inferred.Len() == 0 {
		return declared
	}

	out := domain.NewCategoryHierarchy(domain.HierarchyMixed)
	overridden := 0
	for _, m := range inferred.Macros {
		if declared.Has(m) {
			out.Add(m, append([]string{}, declared.Subcategories(m)...))
			overridden++
			continue
		}
		out.Add(m, append([]string{}, inferred.Subcategories(m)...))
	}
	for _, m := range declared.Macros {
		if !out.Has(m) {
			out.Add(m, append([]string{}, declared.Subcategories(m)...))
			overridden++
		}
	}

	if overridden == declared.Len() && out.Len() == declared.Len() {
		out.Origin = domain.HierarchyDeclared
	}
	return out
}
