package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSimpleTable(t *testing.T) {
	cols := []TableColumn{
		{Title: "Device ID", Width: 10},
		{Title: "Hostname", Width: 8},
	}
	rows := [][]string{
		{"aid-1", "WEB-01"},
		{"aid-2", "a-hostname-longer-than-the-column"},
	}

	out := RenderSimpleTable(cols, rows)
	assert.Contains(t, out, "Device ID")
	assert.Contains(t, out, "WEB-01")
	// Columns widen to fit the longest cell rather than truncating.
	assert.Contains(t, out, "a-hostname-longer-than-the-column")
}

func TestRenderSimpleTableEmpty(t *testing.T) {
	out := RenderSimpleTable([]TableColumn{{Title: "A", Width: 2}}, nil)
	assert.Equal(t, "", out)
}

func TestFileHyperlink(t *testing.T) {
	link := FileHyperlink("/tmp/audit.csv", "audit.csv")
	assert.Contains(t, link, "audit.csv")
	assert.Contains(t, link, "file:///tmp/audit.csv")
}
