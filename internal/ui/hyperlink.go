package ui

import (
	"path/filepath"

	"github.com/muesli/termenv"
)

// FileHyperlink renders an OSC-8 hyperlink to a local file, so terminals
// that support it let the operator click straight through to the artifact
// (the CSV audit log, the config directory). Falls back to plain text on
// terminals without hyperlink support via termenv's output handling.
func FileHyperlink(path, label string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return termenv.Hyperlink("file://"+abs, label)
}
