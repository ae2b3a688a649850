package shell

import (
	"fmt"
	"io"

	"github.com/talonops/talon/internal/ui"
)

// Console funnels all REPL output through one place so that the engine,
// the transfer tracker, and the prompt print consistently and tests can
// capture everything from a buffer.
type Console struct {
	out    io.Writer
	errOut io.Writer
}

// NewConsole wraps the given writers. errOut falls back to out when nil.
func NewConsole(out, errOut io.Writer) *Console {
	if errOut == nil {
		errOut = out
	}
	return &Console{out: out, errOut: errOut}
}

// Print writes a plain line.
func (c *Console) Print(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Info writes an informational line in the info style.
func (c *Console) Info(format string, args ...interface{}) {
	fmt.Fprintln(c.out, ui.InfoStyle.Render(fmt.Sprintf(format, args...)))
}

// Warn writes a cautionary line in the warning style.
func (c *Console) Warn(format string, args ...interface{}) {
	fmt.Fprintln(c.out, ui.WarnStyle.Render(fmt.Sprintf(format, args...)))
}

// Dim writes a de-emphasized line.
func (c *Console) Dim(format string, args ...interface{}) {
	fmt.Fprintln(c.out, ui.DimStyle.Render(fmt.Sprintf(format, args...)))
}

// Success writes a line in the success style.
func (c *Console) Success(format string, args ...interface{}) {
	fmt.Fprintln(c.out, ui.SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

// Error writes a line to the error stream in the error style.
func (c *Console) Error(format string, args ...interface{}) {
	fmt.Fprintln(c.errOut, ui.ErrorStyle.Render(fmt.Sprintf(format, args...)))
}
