package main

import (
	"encoding/json"
	"log/slog"

	"github.com/spf13/cobra"

	"unistats/internal/dataprocessing"
	"unistats/pkg/contracts/domain"
)

func newHierarchyCmd(env *runtimeEnv) *cobra.Command {
	var dimension string

	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Print the macro and subcategory hierarchy of a dimension as JSON",
		Long: `hierarchy groups the categories of the first source into macro
categories. Dimensions without macro categories are grouped by their chart
categories. A declared hierarchy overrides inferred children.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dim, err := env.dimension(dimension)
			if err != nil {
				return err
			}
			if err := env.requireWorkbooks(); err != nil {
				return err
			}

			normalizer := dataprocessing.NewNormalizer(env.paths.DataDir, env.logger, dataprocessing.WithoutCache())
			rows, err := normalizer.Normalize(cmd.Context(), dim.Sheet)
			if err != nil {
				return err
			}

			h := dataprocessing.BuildHierarchy(rows, hierarchyMarkers(dim))
			if declared, ok := dim.DeclaredHierarchy(); ok {
				h = dataprocessing.ResolveHierarchy(h, declared)
			}
			env.logger.InfoContext(cmd.Context(), "hierarchy built",
				slog.String("dimension", dim.Key),
				slog.String("origin", string(h.Origin)),
				slog.Int("macros", h.Len()))
			return printHierarchy(cmd, h)
		},
	}

	cmd.Flags().StringVarP(&dimension, "dimension", "d", "", "dimension key or sheet name (required)")
	_ = cmd.MarkFlagRequired("dimension")
	return cmd
}

// hierarchyMarkers returns the macro labels of dim, falling back to its
// global then individual chart categories.
func hierarchyMarkers(dim domain.Dimension) []string {
	if len(dim.Macros) > 0 {
		return dim.Macros
	}
	seen := make(map[string]struct{})
	var out []string
	for _, c := range append(append([]string{}, dim.Global...), dim.Individual...) {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func printHierarchy(cmd *cobra.Command, h domain.CategoryHierarchy) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(h)
}
