package shell

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAuditCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return records
}

func TestAuditLogWritesHeaderAndNumberedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	audit, err := NewAuditLog(path)
	require.NoError(t, err)

	require.NoError(t, audit.Write("ls .", "aid-1", "HOST-1", true, "total 0", ""))
	require.NoError(t, audit.Write("ls .", "aid-2", "HOST-2", false, "", "timed out"))
	require.NoError(t, audit.Write("ps", "aid-1", "HOST-1", true, "PID ...", ""))
	assert.Equal(t, 3, audit.Rows())
	require.NoError(t, audit.Close())

	records := readAuditCSV(t, path)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"n", "command", "aid", "hostname", "complete", "stdout", "stderr"}, records[0])
	assert.Equal(t, []string{"1", "ls .", "aid-1", "HOST-1", "true", "total 0", ""}, records[1])
	assert.Equal(t, []string{"2", "ls .", "aid-2", "HOST-2", "false", "", "timed out"}, records[2])
	assert.Equal(t, []string{"3", "ps", "aid-1", "HOST-1", "true", "PID ...", ""}, records[3])
}

func TestAuditLogFlushMakesRowsVisible(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	audit, err := NewAuditLog(path)
	require.NoError(t, err)
	defer audit.Close()

	require.NoError(t, audit.Write("env", "aid-1", "HOST-1", true, "PATH=/bin", ""))
	require.NoError(t, audit.Flush())

	// The row is on disk while the shell is still live.
	records := readAuditCSV(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "env", records[1][1])
}

func TestAuditLogEscapesEmbeddedDelimiters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	audit, err := NewAuditLog(path)
	require.NoError(t, err)

	stdout := "line one\nline two, with comma and \"quotes\""
	require.NoError(t, audit.Write(`runscript -Raw=`+"```x```", "aid-1", "HOST-1", true, stdout, ""))
	require.NoError(t, audit.Close())

	records := readAuditCSV(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, stdout, records[1][5])
}

func TestAuditLogCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	audit, err := NewAuditLog(path)
	require.NoError(t, err)

	require.NoError(t, audit.Close())
	require.NoError(t, audit.Close())

	err = audit.Write("ps", "aid-1", "HOST-1", true, "", "")
	assert.Error(t, err, "writes after close must fail loudly")
}

func TestAuditLogRejectsUnwritableDirectory(t *testing.T) {
	_, err := NewAuditLog(filepath.Join(t.TempDir(), "missing", "audit.csv"))
	assert.Error(t, err)
}
