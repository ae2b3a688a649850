package shell

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"

	"github.com/talonops/talon/internal/errors"
)

// auditHeader is the fixed column order of the audit CSV. n is a strictly
// increasing counter so the file can be re-sorted after any spreadsheet
// mangling and still reconstruct the order of proceedings.
var auditHeader = []string{"n", "command", "aid", "hostname", "complete", "stdout", "stderr"}

// AuditLog records every dispatched command and per-device result to a CSV
// file. One row is written per device per command; rows from concurrent
// writers are serialized and numbered under a single lock.
type AuditLog struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	path   string
	next   int
	closed bool
}

// NewAuditLog creates the CSV file, truncating any previous content, and
// writes the header row.
func NewAuditLog(path string) (*AuditLog, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.WrapWithCode(
			err,
			errors.ErrShell,
			"failed to create the command output CSV",
			"check that the directory exists and is writable",
		)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(auditHeader); err != nil {
		file.Close()
		return nil, errors.WrapWithCode(
			err,
			errors.ErrShell,
			"failed to write the CSV header",
			"check that the disk is not full",
		)
	}

	return &AuditLog{
		file:   file,
		writer: writer,
		path:   path,
		next:   1,
	}, nil
}

// Path returns the location of the CSV file on disk.
func (a *AuditLog) Path() string {
	return a.path
}

// Write appends one result row and advances the row counter.
func (a *AuditLog) Write(command, aid, hostname string, complete bool, stdout, stderr string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return errors.New(errors.ErrShell, "the audit log is closed", "")
	}

	row := []string{
		strconv.Itoa(a.next),
		command,
		aid,
		hostname,
		strconv.FormatBool(complete),
		stdout,
		stderr,
	}
	if err := a.writer.Write(row); err != nil {
		return errors.WrapWithCode(err, errors.ErrShell, "failed to write an audit row", "")
	}
	a.next++
	return nil
}

// Rows returns the number of result rows written so far.
func (a *AuditLog) Rows() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next - 1
}

// Flush pushes buffered rows to disk. Called after every dispatched command
// so the spreadsheet stays current while the shell is live.
func (a *AuditLog) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.writer.Flush()
	if err := a.writer.Error(); err != nil {
		return errors.WrapWithCode(err, errors.ErrShell, "failed to flush the audit log", "")
	}
	return nil
}

// Close flushes and closes the file. Closing twice is a no-op.
func (a *AuditLog) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	a.writer.Flush()
	flushErr := a.writer.Error()
	closeErr := a.file.Close()

	if flushErr != nil {
		return errors.WrapWithCode(flushErr, errors.ErrShell, "failed to flush the audit log", "")
	}
	if closeErr != nil {
		return errors.WrapWithCode(closeErr, errors.ErrShell, "failed to close the audit log", "")
	}
	return nil
}
