package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/talonops/talon/internal/api"
	"github.com/talonops/talon/internal/errors"
	"github.com/talonops/talon/internal/logger"
	"github.com/talonops/talon/internal/ui"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultRefreshInterval = 60 * time.Second
)

// Options configures a Prompt. Client, DeviceIDs and CSVPath are required;
// everything else has a sensible default.
type Options struct {
	Client    *api.Client
	DeviceIDs []string
	CSVPath   string

	Timeout       time.Duration
	Queueing      bool
	StartupScript string

	// Input, when set, makes the shell read newline-delimited commands from
	// it instead of running the interactive line editor. This is how piped
	// stdin and tests drive the shell.
	Input     io.Reader
	Output    io.Writer
	ErrOutput io.Writer

	// Loader runs the startup fan-out; Spinner wraps individual remote
	// calls. Both default to the interactive UI components and are
	// replaced with passthroughs in tests.
	Loader  func(title string, tasks []ui.LoadTask) error
	Spinner func(label string, fn func() error) error

	RefreshInterval time.Duration
	Log             logger.Logger
}

/// Prompt is the interactive batch shell: one REPL multiplexing every
// command across the whole session set.
type Prompt struct {
	client    *api.Client
	deviceIDs []string
	catalog   *Catalog
	console   *Console
	log       logger.Logger

	audit     *AuditLog
	meta      *MetadataCache
	engine    *Engine
	transfers *TransferTracker
	refresh   *SessionRefreshTimer

	spin          func(string, func() error) error
	input         io.Reader
	startupScript string

	// sessionMu serializes the background session refresh against
	// reconnects triggered by a queueing change, so the two can never
	// operate on a half-replaced session set.
	sessionMu sync.Mutex

	// mu guards the user-settable parameters and the prompt string.
	mu        sync.Mutex
	timeout   time.Duration
	queueing  bool
	promptStr string

	connected map[string]api.ConnectionResult
	closed    bool
}

// NewPrompt connects to the device set and prepares the shell: the cloud
// script and put-file inventories and the device metadata are fetched
// concurrently, the batch session is established, the prompt is derived
// from the fleet's working directory, the audit CSV is created, and the
// session refresh timer starts. An error is returned if no device connects.
func NewPrompt(ctx context.Context, opts Options) (*Prompt, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	if opts.Log == nil {
		opts.Log = logger.Default()
	}
	if opts.Loader == nil {
		opts.Loader = ui.RunLoader
	}
	if opts.Spinner == nil {
		opts.Spinner = ui.WithSpinner
	}

	p := &Prompt{
		client:        opts.Client,
		deviceIDs:     opts.DeviceIDs,
		catalog:       NewCatalog(),
		console:       NewConsole(opts.Output, opts.ErrOutput),
		log:           opts.Log,
		spin:          opts.Spinner,
		input:         opts.Input,
		startupScript: opts.StartupScript,
		timeout:       opts.Timeout,
		queueing:      opts.Queueing,
	}

	var devices map[string]api.Device
	tasks := []ui.LoadTask{
		{
			Label: "Cloud scripts",
			Run: func() error {
				scripts, err := p.client.Scripts.DescribeScripts(ctx)
				if err != nil {
					return err
				}
				p.catalog.Scripts.Replace(cloudFileNames(scripts))
				return nil
			},
		},
		{
			Label: "Put files",
			Run: func() error {
				putFiles, err := p.client.Scripts.DescribePutFiles(ctx)
				if err != nil {
					return err
				}
				p.catalog.PutFiles.Replace(cloudFileNames(putFiles))
				return nil
			},
		},
		{
			Label: "Device metadata",
			Run: func() error {
				var err error
				devices, err = p.client.Hosts.Describe(ctx, p.deviceIDs)
				return err
			},
		},
	}
	if err := opts.Loader("Loading data...", tasks); err != nil {
		return nil, errors.WrapWithCode(
			err,
			errors.ErrShell,
			"failed to load data required by the shell",
			"check API permissions for hosts and remote execution",
		)
	}
	p.meta = NewMetadataCache(devices)

	p.console.Print("Connecting to systems")
	if err := p.connect(ctx); err != nil {
		return nil, err
	}

	audit, err := NewAuditLog(opts.CSVPath)
	if err != nil {
		return nil, err
	}
	p.audit = audit

	p.engine = NewEngine(p.client.RTR, p.audit, p.meta, p.console, p.log, p.Timeout, p.spin)
	p.transfers = NewTransferTracker(
		p.client.RTR, p.client.Hosts, p.client.Files,
		p.meta, p.audit, p.console, p.log, p.Timeout, p.spin,
	)

	p.setPrompt(p.deriveRootPath())

	// Check regularly whether the sessions need refreshing, so the shell
	// survives long stretches of operator inactivity.
	p.refresh = NewSessionRefreshTimer(opts.RefreshInterval, func() {
		p.sessionMu.Lock()
		defer p.sessionMu.Unlock()
		if refreshErr := p.client.RTR.RefreshSessions(context.Background(), p.Timeout()); refreshErr != nil {
			p.log.Warn("session refresh failed: %v", refreshErr)
		}
	})

	p.console.Print("Welcome to the batch shell. Type 'help' or '?' to list the available commands.")
	p.console.Print("The first host in each response will have its output written to screen. " +
		"All hosts will have their outputs written to CSV.")

	return p, nil
}

func cloudFileNames(files map[string]api.CloudFile) []string {
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}
	return names
}

// connect establishes (or re-establishes) the batch session and counts the
// devices that either connected or were queued for offline execution.
func (p *Prompt) connect(ctx context.Context) error {
	var connected map[string]api.ConnectionResult
	err := p.spin("", func() error {
		var innerErr error
		connected, innerErr = p.client.RTR.Connect(ctx, p.deviceIDs, p.Queueing(), p.Timeout())
		return innerErr
	})
	if err != nil {
		return errors.WrapWithCode(
			err,
			errors.ErrShell,
			"failed to establish the batch session",
			"check connectivity and API permissions for remote execution",
		)
	}
	p.connected = connected

	successful := 0
	for _, result := range connected {
		if result.Connected() {
			successful++
		}
	}
	if successful == 0 {
		return errors.New(
			errors.ErrShell,
			"no devices connected successfully",
			"if this is unexpected, check the log file",
		)
	}
	p.log.Info("connected to %d of %d device(s)", successful, len(p.deviceIDs))
	return nil
}

// deriveRootPath guesses the working directory shown in the prompt. Online
// devices echo their working directory via the pwd probe run at connect
// time; queued devices fall back to a platform-appropriate root.
func (p *Prompt) deriveRootPath() string {
	firstQueuedRootPath := ""
	for aid, result := range p.connected {
		if result.OfflineQueued {
			// Queued hosts cannot echo a prompt; remember a platform root
			// in case no host is online.
			if firstQueuedRootPath == "" {
				firstQueuedRootPath = "/"
				if device, ok := p.meta.Get(aid); ok && device.Platform == api.PlatformWindows {
					firstQueuedRootPath = `C:\`
				}
			}
			continue
		}

		if result.BaseCommand == "pwd" {
			return result.Stdout
		}

		p.console.Error("A connected device does not have a base command of pwd")
	}

	if firstQueuedRootPath != "" {
		return firstQueuedRootPath
	}

	for aid := range p.connected {
		if device, ok := p.meta.Get(aid); ok && device.Platform == api.PlatformWindows {
			return `C:\`
		}
		break
	}

	return "/"
}

// setPrompt renders the prompt from a working directory, using a Windows
// style marker when the path looks like a drive-letter path.
func (p *Prompt) setPrompt(path string) {
	promptChar := " #"
	if strings.Contains(path, `:\`) {
		promptChar = ">"
	}
	p.mu.Lock()
	p.promptStr = path + promptChar + " "
	p.mu.Unlock()
}

// PromptString returns the current prompt text.
func (p *Prompt) PromptString() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.promptStr
}

// Timeout returns the current per-command timeout.
func (p *Prompt) Timeout() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timeout
}

// Queueing reports whether offline queueing is enabled.
func (p *Prompt) Queueing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queueing
}

// Run executes the startup script if one was given, then reads and
// dispatches commands until quit, EOF, or the end of a piped input. The
// prompt is always cleaned up before returning.
func (p *Prompt) Run(ctx context.Context) error {
	defer p.Close()

	if p.startupScript != "" {
		quit, err := p.runScriptFile(ctx, p.startupScript)
		if err != nil || quit {
			return err
		}
	}

	if p.input != nil {
		scanner := bufio.NewScanner(p.input)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if !p.Execute(ctx, scanner.Text()) {
				return nil
			}
		}
		return scanner.Err()
	}

	return p.runInteractive(ctx)
}

func (p *Prompt) runInteractive(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          p.PromptString(),
		AutoComplete:    NewCatalogCompleter(p.catalog),
		HistoryFile:     filepath.Join(os.TempDir(), ".talon_shell_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrShell, "failed to initialize the line editor", "")
	}
	defer rl.Close()

	for {
		rl.SetPrompt(p.PromptString())
		line, readErr := rl.Readline()
		if readErr == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return readErr
		}

		if !p.Execute(ctx, line) {
			return nil
		}
	}
}

// runScriptFile feeds each line of a local script to the dispatcher, as if
// the operator had typed it. quit reports whether the script ended the
// shell with an explicit quit command.
func (p *Prompt) runScriptFile(ctx context.Context, path string) (quit bool, err error) {
	file, err := os.Open(path)
	if err != nil {
		return false, errors.WrapWithCode(
			err,
			errors.ErrShell,
			fmt.Sprintf("failed to open the startup script %s", path),
			"check that the file exists and is readable",
		)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if !p.Execute(ctx, scanner.Text()) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// Execute dispatches one input line. It returns false when the line asked
// the shell to exit.
func (p *Prompt) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return true
	}

	first := line
	if idx := strings.IndexAny(line, " \t"); idx > 0 {
		first = line[:idx]
	}

	switch first {
	case "quit", "exit":
		return false
	case "help", "?":
		p.printHelp(line)
		return true
	case "set":
		p.handleSet(ctx, line)
		return true
	}

	cmd, err := p.catalog.Parse(line)
	if err != nil {
		p.console.Error("%v", err)
		return true
	}

	p.dispatch(ctx, cmd)
	return true
}

// dispatch routes a parsed command: locally serviced verbs run against the
// cloud inventories or the transfer tracker, everything else is translated
// and fanned out to the session set.
func (p *Prompt) dispatch(ctx context.Context, cmd *Command) {
	switch cmd.Verb {
	case VerbCloudScripts:
		p.handleCloudScripts(ctx, cmd)
		return

	case VerbPutFiles:
		p.handlePutFiles(ctx)
		return

	case VerbGet:
		if err := p.transfers.Get(ctx, cmd.Arg("file")); err != nil {
			p.console.Error("%v", err)
		}
		return

	case VerbGetStatus:
		if err := p.transfers.Status(ctx, cmd.Arg("batch_get_req_id")); err != nil {
			p.console.Error("%v", err)
		}
		return

	case VerbDownload:
		if err := p.transfers.Download(ctx, cmd.Arg("destination"), cmd.Flag("batch_get_req_id"), cmd.Has("extract")); err != nil {
			p.console.Error("%v", err)
		}
		return

	case VerbRestart:
		if !cmd.Has("confirm") {
			p.console.Warn("You must confirm a restart with -Confirm. No action was taken.")
			return
		}

	case VerbShutdown:
		if !cmd.Has("confirm") {
			p.console.Warn("You must confirm a shutdown with -Confirm. No action was taken.")
			return
		}

	case VerbRunscript:
		if cmd.Has("workstation_path") {
			if !p.loadWorkstationScript(cmd) {
				return
			}
		}
	}

	command, err := Build(cmd)
	if err != nil {
		p.console.Error("%v", err)
		return
	}

	stdout, _, ok, err := p.engine.RunGeneric(ctx, command)
	if err != nil {
		return
	}

	switch cmd.Verb {
	case VerbCd:
		// A successful cd echoes the new working directory; mirror it in
		// the prompt.
		if ok && stdout != "" {
			p.setPrompt(stdout)
		}
	case VerbRunscript:
		// Cloud scripts often reply with structured JSON; render it as a
		// table when they do.
		if ok && strings.HasPrefix(strings.TrimSpace(stdout), "{") {
			p.console.RenderScriptResult(stdout)
		}
	}
}

// loadWorkstationScript reads a script from the local filesystem and
// rewrites the command to carry it as raw content, since the remote side
// has no access to workstation paths.
func (p *Prompt) loadWorkstationScript(cmd *Command) bool {
	path := cmd.Flag("workstation_path")
	contents, err := os.ReadFile(path)
	if err != nil {
		p.console.Print("%s could not be found; command aborted.", path)
		return false
	}
	cmd.ClearFlag("workstation_path")
	cmd.SetFlag("raw", string(contents))
	return true
}

func (p *Prompt) handleCloudScripts(ctx context.Context, cmd *Command) {
	scripts, err := p.client.Scripts.DescribeScripts(ctx)
	if err != nil {
		p.console.Error("%v", err)
		return
	}

	// The API call already happened, so refresh the completion choices too.
	p.catalog.Scripts.Replace(cloudFileNames(scripts))

	requested := cmd.Arg("script_name")
	found := false
	for _, script := range sortCloudFiles(scripts) {
		if requested != "" && script.Name != requested {
			continue
		}
		found = true
		p.printCloudFile(script, "Script length")
		if cmd.Has("show_content") {
			p.console.Info("%s", script.Content)
		}
		p.console.Print("")
	}

	if requested != "" && !found {
		p.console.Error("The script %s could not be found", requested)
	}
}

func (p *Prompt) handlePutFiles(ctx context.Context) {
	putFiles, err := p.client.Scripts.DescribePutFiles(ctx)
	if err != nil {
		p.console.Error("%v", err)
		return
	}

	p.catalog.PutFiles.Replace(cloudFileNames(putFiles))

	for _, putFile := range sortCloudFiles(putFiles) {
		p.printCloudFile(putFile, "File size")
		p.console.Print("")
	}
}

func (p *Prompt) printCloudFile(file api.CloudFile, sizeLabel string) {
	p.console.Print("%s", ui.TitleStyle.Render(file.Name))
	p.console.Print("created by:  %s // created at:  %s", file.CreatedBy, file.CreatedAt)
	p.console.Print("modified by: %s // modified at: %s", file.ModifiedBy, file.ModifiedAt)
	p.console.Print("%s: %d bytes", sizeLabel, file.Size)
	if file.Description != "" {
		p.console.Print("%s", file.Description)
	}
}

func sortCloudFiles(files map[string]api.CloudFile) []api.CloudFile {
	sorted := make([]api.CloudFile, 0, len(files))
	for _, file := range files {
		sorted = append(sorted, file)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// handleSet implements the settable parameters: `set` alone lists them,
// `set timeout <seconds>` and `set queueing <bool>` change them. Changing
// queueing tears down and re-establishes every session, since queueing is a
// property of the session itself.
func (p *Prompt) handleSet(ctx context.Context, line string) {
	tokens, err := Tokenize(line)
	if err != nil {
		p.console.Error("%v", err)
		return
	}

	if len(tokens) == 1 {
		p.console.Print("queueing: %t", p.Queueing())
		p.console.Print("timeout: %d", int(p.Timeout().Seconds()))
		return
	}
	if len(tokens) != 3 {
		p.console.Error("usage: set <queueing|timeout> <value>")
		return
	}

	switch tokens[1] {
	case "timeout":
		seconds, parseErr := strconv.Atoi(tokens[2])
		if parseErr != nil || seconds <= 0 {
			p.console.Error("timeout must be a positive number of seconds")
			return
		}
		p.mu.Lock()
		old := p.timeout
		p.timeout = time.Duration(seconds) * time.Second
		p.mu.Unlock()
		p.console.Print("Changed command timeout from %ds to %ds", int(old.Seconds()), seconds)

	case "queueing":
		value, parseErr := strconv.ParseBool(tokens[2])
		if parseErr != nil {
			p.console.Error("queueing must be true or false")
			return
		}
		p.setQueueing(ctx, value)

	default:
		p.console.Error("unknown parameter: %s", tokens[1])
	}
}

// setQueueing reconnects the session set if and only if the value actually
// changed, then re-derives the prompt from the fresh sessions.
func (p *Prompt) setQueueing(ctx context.Context, value bool) {
	p.mu.Lock()
	old := p.queueing
	if old == value {
		p.mu.Unlock()
		p.console.Print("Queueing was already set to %t, so the sessions will not reconnect", old)
		return
	}
	p.queueing = value
	p.mu.Unlock()

	p.sessionMu.Lock()
	defer p.sessionMu.Unlock()
	if err := p.connect(ctx); err != nil {
		p.console.Error("%v", err)
		return
	}
	p.setPrompt(p.deriveRootPath())
}

func (p *Prompt) printHelp(line string) {
	tokens, _ := Tokenize(line)
	if len(tokens) > 1 {
		if grammar, ok := p.catalog.Lookup(tokens[1]); ok {
			p.printGrammarHelp(grammar)
			return
		}
		p.console.Error("unknown command: %s", tokens[1])
		return
	}

	p.console.Print("Available commands:")
	for _, name := range p.catalog.Verbs() {
		grammar, _ := p.catalog.Lookup(name)
		p.console.Print("  %-14s %s", name, grammar.Help)
	}
	p.console.Print("  %-14s %s", "set", "Show or change the queueing and timeout parameters")
	p.console.Print("  %-14s %s", "quit", "Exit the shell")
}

func (p *Prompt) printGrammarHelp(grammar *Grammar) {
	p.console.Print("%s: %s", grammar.Name, grammar.Help)

	if grammar.Sub != nil {
		p.console.Print("Subcommands:")
		for _, name := range subNames(grammar) {
			p.console.Print("  %-10s %s", name, grammar.Sub[name].Help)
		}
		return
	}

	for _, pos := range grammar.Positionals {
		marker := "(optional)"
		if pos.Required {
			marker = "(required)"
		}
		p.console.Print("  %-22s %s %s", pos.Name, marker, pos.Help)
	}
	for _, flag := range grammar.Flags {
		p.console.Print("  %-22s %s", strings.Join(flag.Forms, ", "), flag.Help)
	}
}

// Close tears the shell down: the refresh timer first so no refresh races
// the teardown, then the audit log, then a final pointer to the CSV so the
// operator can jump straight to the full record. Closing twice is a no-op.
func (p *Prompt) Close() {
	if p.closed {
		return
	}
	p.closed = true

	p.console.Print("Exiting shell...")

	if p.refresh != nil {
		p.refresh.Stop()
	}

	if p.audit != nil {
		if err := p.audit.Close(); err != nil {
			p.console.Error("%v", err)
		}
		p.console.Success("Log file located at: %s", ui.FileHyperlink(p.audit.Path(), p.audit.Path()))
	}
}
