// Package shared holds code used across packages that belongs to no single
// layer.
//
// The testutil subpackage provides the test helpers: a buffered slog
// handler with log assertions, and builders for the small source workbooks
// the data processing, exporter, service and application tests read.
//
//	logger, logs := testutil.NewTestLogger(t)
//	testutil.WriteWorkbook(t, dir, "old dominion u.xlsx", testutil.GraduateStudentsSheet(1))
//	testutil.AssertLogContains(t, logs, slog.LevelInfo, "sheet normalized")
package shared
