package shell

import (
	"context"
	"sort"
	"time"

	"github.com/talonops/talon/internal/api"
	"github.com/talonops/talon/internal/logger"
)

// Engine dispatches translated commands to every connected device and fans
// the results back out: one audit row per device, one representative output
// on screen, and a deduplicated error digest.
type Engine struct {
	exec    api.RemoteExecutor
	audit   *AuditLog
	meta    *MetadataCache
	console *Console
	log     logger.Logger

	// timeout is read at dispatch time so `set timeout` takes effect
	// immediately, including for commands already being typed.
	timeout func() time.Duration

	// spin wraps the remote call in a progress indicator; tests replace it
	// with a passthrough.
	spin func(label string, fn func() error) error
}

// NewEngine wires an engine. spin may be nil, in which case the remote call
// runs without a progress indicator.
func NewEngine(
	exec api.RemoteExecutor,
	audit *AuditLog,
	meta *MetadataCache,
	console *Console,
	log logger.Logger,
	timeout func() time.Duration,
	spin func(string, func() error) error,
) *Engine {
	if spin == nil {
		spin = func(_ string, fn func() error) error { return fn() }
	}
	return &Engine{
		exec:    exec,
		audit:   audit,
		meta:    meta,
		console: console,
		log:     log,
		timeout: timeout,
		spin:    spin,
	}
}

// RunGeneric executes one translated command across the session set.
//
// Every device's result is written to the audit log. The returned stdout
// and stderr come from the first device in the response to report a
// complete result, taken as one pair so the two streams never mix hosts;
// ok is false when no device completed. The result order is whatever the
// transport returned, so "first" is deliberately arbitrary: with many hosts
// there is no meaningful single output, and the CSV holds the full record.
func (e *Engine) RunGeneric(ctx context.Context, command string) (stdout, stderr string, ok bool, err error) {
	e.console.Print("Executing command: %s", command)
	e.log.Debug("dispatching %q with timeout %s", command, e.timeout())

	var results map[string]api.CommandResult
	runErr := e.spin("", func() error {
		var innerErr error
		results, innerErr = e.exec.RunCommand(ctx, command, e.timeout())
		return innerErr
	})
	if runErr != nil {
		e.console.Error("Command failed: %v", runErr)
		return "", "", false, runErr
	}

	printedFirst := false
	errorSet := make(map[string]struct{})

	for aid, result := range results {
		hostname := e.meta.Hostname(aid)

		if writeErr := e.audit.Write(command, aid, hostname, result.Complete, result.Stdout, result.Stderr); writeErr != nil {
			e.console.Error("%v", writeErr)
		}

		if result.Complete && !ok {
			stdout = result.Stdout
			stderr = result.Stderr
			ok = true
		}

		if !printedFirst {
			e.console.Print("%s: %s", hostname, result.Stdout)
			if result.Stderr != "" {
				e.console.Error("%s: %s", hostname, result.Stderr)
			}
			printedFirst = true
		}

		if len(result.Errors) > 0 {
			errorSet[result.Errors[0]] = struct{}{}
		}
	}

	if len(results) > 1 {
		e.console.Print(
			"(Output from the remaining %d host(s) was written to the CSV output file)",
			len(results)-1,
		)
	}

	if len(errorSet) > 0 {
		e.console.Error("At least one error was detected. Check the log file for full details.")
		e.console.Print("List of errors detected:")
		messages := make([]string, 0, len(errorSet))
		for msg := range errorSet {
			messages = append(messages, msg)
		}
		sort.Strings(messages)
		for _, msg := range messages {
			e.console.Dim("-> %s", msg)
		}
	}

	if flushErr := e.audit.Flush(); flushErr != nil {
		e.console.Error("%v", flushErr)
	}

	return stdout, stderr, ok, nil
}
