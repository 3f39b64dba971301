package exporter

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
)

// NameData is the data an image name template sees.
type NameData struct {
	// Source is the source identifier, e.g. "old dominion u".
	Source string
	// File is the workbook name without extension, e.g. "Old-Dominion-U".
	File string
	// Sheet is the dimension's sheet name.
	Sheet string
	// Dimension is the dimension key.
	Dimension string
}

var nameFuncs = template.FuncMap{
	"underscore": func(s string) string { return strings.ReplaceAll(s, " ", "_") },
	"dash":       func(s string) string { return strings.ReplaceAll(s, " ", "-") },
	"lower":      strings.ToLower,
}

// ImageNamer turns templates into output file names.
type ImageNamer struct {
	global     *template.Template
	individual *template.Template
}

// NewImageNamer parses the global and individual name templates.
func NewImageNamer(global, individual string) (*ImageNamer, error) {
	g, err := template.New("global").Funcs(nameFuncs).Option("missingkey=error").Parse(global)
	if err != nil {
		return nil, fmt.Errorf("parse global image name: %w", err)
	}
	i, err := template.New("individual").Funcs(nameFuncs).Option("missingkey=error").Parse(individual)
	if err != nil {
		return nil, fmt.Errorf("parse individual image name: %w", err)
	}
	return &ImageNamer{global: g, individual: i}, nil
}

// Global names the cross-source chart of a sheet.
func (n *ImageNamer) Global(data NameData) (string, error) {
	return execName(n.global, data)
}

// Individual names the chart of one source and sheet.
func (n *ImageNamer) Individual(data NameData) (string, error) {
	return execName(n.individual, data)
}

func execName(t *template.Template, data NameData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render image name: %w", err)
	}
	name := strings.TrimSpace(buf.String())
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid image name %q", name)
	}
	return name, nil
}
