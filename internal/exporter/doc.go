// Package exporter writes the batch outputs: PNG charts for every
// dimension and the long-format observation table as CSV.
//
// BatchExporter draws one global comparison chart per dimension and one
// chart per source and dimension. File names come from text/template
// templates over NameData, with the helpers underscore and dash replacing
// spaces:
//
//	Global-Comparison_{{underscore .Sheet}}.png
//	{{.File}}_{{dash .Sheet}}.png
//
// CSVWriter writes Category,Year,Value,University rows with a UTF-8 BOM for
// Excel compatibility.
package exporter
