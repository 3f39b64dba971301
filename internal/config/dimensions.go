package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"unistats/pkg/contracts/domain"
)

// Dimension keys.
const (
	DimensionEarnedDoctorates = "earned-doctorates"
	DimensionGraduateStudents = "graduate-students"
	DimensionSource           = "source"
	DimensionPostdoctorates   = "postdoctorates"
)

// DefaultDimensions returns the built-in analysis domains.
func DefaultDimensions() []domain.Dimension {
	return []domain.Dimension{
		{
			Key:        DimensionEarnedDoctorates,
			Sheet:      SheetEarnedDoctorates,
			Title:      "Earned Doctorates",
			YLabel:     "Total of earned doctorates",
			Global:     []string{"All fields"},
			Individual: []string{"Science", "Engineering", "Non-science and engineering"},
		},
		{
			Key:         DimensionGraduateStudents,
			Sheet:       SheetGraduateStudents,
			Title:       "Graduate Students",
			YLabel:      "Total of full and part-time students",
			Macros:      []string{"All full-time students", "Science", "Engineering", "Health"},
			Global:      []string{"All students"},
			Individual:  []string{"Science", "Engineering", "Health"},
			Interactive: true,
		},
		{
			Key:    DimensionSource,
			Sheet:  SheetSource,
			Title:  "Source of Support",
			YLabel: "Full-time grad students with federal support",
			Macros: []string{
				"All types and sources of support",
				"Fellowships",
				"Research assistantships",
				"Teaching assistantships",
				"Other types of support",
				"Personal resources",
			},
			Global: []string{"All types and sources of support"},
			Individual: []string{
				"Fellowships",
				"Research assistantships",
				"Teaching assistantships",
				"Other types of support",
				"Personal resources",
			},
			Interactive: true,
		},
		{
			Key:         DimensionPostdoctorates,
			Sheet:       SheetPostdoctorates,
			Title:       "Postdoctorates",
			YLabel:      "Total of postdoctorates",
			Macros:      []string{"Science", "Engineering", "Health"},
			Global:      []string{"Science", "Engineering", "Health"},
			SumGlobal:   true,
			Individual:  []string{"Science", "Engineering", "Health"},
			Interactive: true,
		},
	}
}

// dimensionsFile is the layout of a hierarchy declaration file.
type dimensionsFile struct {
	Dimensions []domain.Dimension `yaml:"dimensions"`
}

// LoadDimensions returns the default dimensions overlaid with the
// declarations in path. A declared dimension whose key matches a default
// replaces only the fields it sets; unknown keys are appended. An empty
// path returns the defaults.
func LoadDimensions(path string) ([]domain.Dimension, error) {
	dims := DefaultDimensions()
	if path == "" {
		return dims, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hierarchy file: %w", err)
	}

	var file dimensionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse hierarchy file %s: %w", path, err)
	}

	for _, declared := range file.Dimensions {
		if strings.TrimSpace(declared.Key) == "" {
			return nil, fmt.Errorf("hierarchy file %s: dimension without key", path)
		}

		idx := -1
		for i := range dims {
			if dims[i].Key == declared.Key {
				idx = i
				break
			}
		}

		if idx < 0 {
			if declared.Sheet == "" {
				return nil, fmt.Errorf("hierarchy file %s: dimension %q has no sheet", path, declared.Key)
			}
			dims = append(dims, declared)
			continue
		}
		dims[idx] = mergeDimension(dims[idx], declared)
	}

	return dims, nil
}

// FindDimension returns the dimension with key.
func FindDimension(dims []domain.Dimension, key string) (domain.Dimension, bool) {
	for _, d := range dims {
		if d.Key == key {
			return d, true
		}
	}
	return domain.Dimension{}, false
}

func mergeDimension(base, over domain.Dimension) domain.Dimension {
	if over.Sheet != "" {
		base.Sheet = over.Sheet
	}
	if over.Title != "" {
		base.Title = over.Title
	}
	if over.YLabel != "" {
		base.YLabel = over.YLabel
	}
	if len(over.Macros) > 0 {
		base.Macros = over.Macros
	}
	if len(over.Global) > 0 {
		base.Global = over.Global
		base.SumGlobal = over.SumGlobal
	}
	if len(over.Individual) > 0 {
		base.Individual = over.Individual
	}
	if over.Interactive {
		base.Interactive = true
	}
	if len(over.Hierarchy) > 0 {
		base.Hierarchy = over.Hierarchy
	}
	return base
}
