// Package dataprocessing turns per-institution statistics workbooks into a
// long-format table and derives the category hierarchy used for navigation.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Parser: reads one sheet of a workbook as text (LoadSheet)
// 2. Processor: forward-fills category labels, drops empty rows and melts
// period columns into observations
// 3. Normalizer: runs the processor over every workbook of the data
// directory and caches the result per sheet and input fingerprint
// 4. Merger and hierarchy builder: combine part-time and full-time sheets,
// and partition categories under their macro categories
//
// # Usage
//
//	n := dataprocessing.NewNormalizer(paths.DataDir, logger)
//	rows, err := n.Normalize(ctx, "Graduate Students")
//	if err != nil {
//	    return err
//	}
//	h := dataprocessing.BuildHierarchy(rows, dim.Macros)
//
// # Data Flow
//
//	Workbook → LoadSheet → SourceTable → ForwardFill → Melt → Observations → BuildHierarchy
//
// # Error Handling
//
// Per-workbook problems never fail a run. A missing sheet or unreadable
// workbook is logged and counted as skipped; an unparseable cell becomes a
// missing value. Only an unreadable data directory is returned as an error.
// Errors carry the typed errors of the internal/errors package and can be
// matched with errors.Is against ErrSheetNotFound, ErrLoad and
// ErrNoCategoryColumn.
package dataprocessing
