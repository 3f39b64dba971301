// Package config provides centralized configuration management for UniStats.
// It handles loading configuration from multiple sources, validation, and
// the catalogue of analysis dimensions.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern UNISTATS_* for namespacing:
//
//	UNISTATS_SERVER_PORT=8501
//	UNISTATS_PATHS_DATA_DIR=/srv/unistats/data
//	UNISTATS_LOGGING_LEVEL=debug
//	UNISTATS_ANALYSIS_FOCUS_SOURCE="old dominion u"
//	UNISTATS_ANALYSIS_HIERARCHY_FILE=configs/hierarchy.yaml
//
// UNISTATS_CONFIG_FILE selects the YAML file explicitly; otherwise
// config.yaml and configs/config.yaml are tried.
//
// # Dimensions
//
// DefaultDimensions describes the four sheets every source workbook carries.
// LoadDimensions overlays a YAML declaration so macro and micro categories
// can be stated explicitly instead of inferred from row order:
//
//	dimensions:
//	  - key: graduate-students
//	    hierarchy:
//	      Science: [Biological sciences, Physical sciences]
//	      Engineering: [Civil engineering]
//
// # Path Management
//
// ResolvePaths makes every configured directory absolute:
//
//	paths, err := cfg.ResolvedPaths()
//	imagePath := paths.GetOutputPath("Global-Comparison_Source.png")
package config
