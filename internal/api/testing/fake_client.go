// Package testing provides test doubles for the api package.
package testing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talonops/talon/internal/api"
)

// FakeDevice configures one simulated endpoint.
type FakeDevice struct {
	Device api.Device

	// Offline devices report OfflineQueued when queueing is enabled and
	// fail to connect otherwise.
	Offline bool

	// InitialPath is echoed by the pwd probe on connect.
	InitialPath string

	// Responses maps exact command strings to canned results. Commands
	// without an entry succeed with a generic stdout.
	Responses map[string]api.CommandResult
}

// FakeExecutor simulates the batch remote-execution capability.
// Call counters are exported for test assertions.
type FakeExecutor struct {
	mu      sync.Mutex
	devices map[string]*FakeDevice

	// pending get requests by ID, and the files "uploaded" so far.
	pendingGets map[string][]api.RetrievedFile

	ConnectCalls   int
	RunCalls       []string
	RefreshCalls   int
	GetCalls       []string
	GetStatusCalls []string

	// LastQueueing records the queueing flag of the most recent Connect.
	LastQueueing bool

	// ConnectErr, when set, fails the next Connect outright.
	ConnectErr error
}

// NewFakeExecutor creates an executor with no devices.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{
		devices:     make(map[string]*FakeDevice),
		pendingGets: make(map[string][]api.RetrievedFile),
	}
}

// AddDevice registers a simulated endpoint and returns the executor for chaining.
func (f *FakeExecutor) AddDevice(d *FakeDevice) *FakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d.InitialPath == "" {
		if d.Device.Platform == api.PlatformWindows {
			d.InitialPath = `C:\`
		} else {
			d.InitialPath = "/"
		}
	}
	f.devices[d.Device.ID] = d
	return f
}

// Connect simulates a batch connect across the requested devices.
func (f *FakeExecutor) Connect(_ context.Context, deviceIDs []string, queueing bool, _ time.Duration) (map[string]api.ConnectionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ConnectCalls++
	f.LastQueueing = queueing
	if f.ConnectErr != nil {
		err := f.ConnectErr
		f.ConnectErr = nil
		return nil, err
	}

	results := make(map[string]api.ConnectionResult, len(deviceIDs))
	for _, id := range deviceIDs {
		d, known := f.devices[id]
		if !known {
			results[id] = api.ConnectionResult{AID: id, Stderr: "unknown device"}
			continue
		}
		switch {
		case !d.Offline:
			results[id] = api.ConnectionResult{
				AID:         id,
				Complete:    true,
				Stdout:      d.InitialPath,
				BaseCommand: "pwd",
			}
		case queueing:
			results[id] = api.ConnectionResult{AID: id, OfflineQueued: true}
		default:
			results[id] = api.ConnectionResult{AID: id, Stderr: "device offline"}
		}
	}
	return results, nil
}

// RunCommand simulates dispatching one command to every connected device.
func (f *FakeExecutor) RunCommand(_ context.Context, command string, _ time.Duration) (map[string]api.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.RunCalls = append(f.RunCalls, command)
	results := make(map[string]api.CommandResult, len(f.devices))
	for id, d := range f.devices {
		if d.Offline {
			results[id] = api.CommandResult{
				Errors: []string{"Device is offline"},
			}
			continue
		}
		if resp, ok := d.Responses[command]; ok {
			results[id] = resp
			continue
		}
		results[id] = api.CommandResult{
			Complete: true,
			Stdout:   fmt.Sprintf("%s: ok", command),
		}
	}
	return results, nil
}

// Get simulates a batch upload-from-endpoint request. Online devices report
// the file as pending upload; offline devices are queued. The returned
// request ID can later be passed to GetStatus.
func (f *FakeExecutor) Get(_ context.Context, filePath string, _ time.Duration) ([]api.GetRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.GetCalls = append(f.GetCalls, filePath)
	req := api.GetRequest{
		ID:      uuid.NewString(),
		Devices: make(map[string]api.GetResult, len(f.devices)),
	}
	var files []api.RetrievedFile
	for id, d := range f.devices {
		if d.Offline {
			req.Devices[id] = api.GetResult{OfflineQueued: true, Stdout: filePath}
			continue
		}
		req.Devices[id] = api.GetResult{Complete: true, Stdout: filePath}
		files = append(files, api.RetrievedFile{
			DeviceID: id,
			Filename: filePath,
			SHA256:   fakeHash(id + filePath),
			Size:     int64(len(filePath)) * 10,
		})
	}
	f.pendingGets[req.ID] = files
	return []api.GetRequest{req}, nil
}

// GetStatus returns the files uploaded so far for a request ID.
func (f *FakeExecutor) GetStatus(_ context.Context, requestID string, _ time.Duration) ([]api.RetrievedFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.GetStatusCalls = append(f.GetStatusCalls, requestID)
	return f.pendingGets[requestID], nil
}

// RefreshSessions counts refresh invocations.
func (f *FakeExecutor) RefreshSessions(_ context.Context, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RefreshCalls++
	return nil
}

// CompleteQueuedGet marks a previously queued device's upload as complete,
// so later GetStatus calls include its file.
func (f *FakeExecutor) CompleteQueuedGet(requestID, deviceID, filePath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingGets[requestID] = append(f.pendingGets[requestID], api.RetrievedFile{
		DeviceID: deviceID,
		Filename: filePath,
		SHA256:   fakeHash(deviceID + filePath),
		Size:     int64(len(filePath)) * 10,
	})
}

// Refreshes returns the current refresh-call count.
func (f *FakeExecutor) Refreshes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.RefreshCalls
}

// Connects returns the current connect-call count.
func (f *FakeExecutor) Connects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ConnectCalls
}

// FakeDirectory simulates the device directory.
type FakeDirectory struct {
	mu      sync.Mutex
	devices map[string]api.Device

	DescribeCalls [][]string
	ActionCalls   []ActionCall

	// Tokens maps device ID to maintenance token; BulkToken is returned
	// for the tenant-wide request.
	Tokens    map[string]string
	BulkToken string

	// ActionOutcomes are returned per PerformAction call, in order. When
	// exhausted, an all-success outcome is synthesized.
	ActionOutcomes []*api.ActionOutcome
}

// ActionCall records one PerformAction invocation.
type ActionCall struct {
	Action string
	IDs    []string
}

// NewFakeDirectory creates a directory with no devices.
func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{
		devices: make(map[string]api.Device),
		Tokens:  make(map[string]string),
	}
}

// AddDevice registers device metadata.
func (f *FakeDirectory) AddDevice(d api.Device) *FakeDirectory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices[d.ID] = d
	return f
}

// Describe resolves the requested IDs; unknown IDs are absent from the result.
func (f *FakeDirectory) Describe(_ context.Context, deviceIDs []string) (map[string]api.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.DescribeCalls = append(f.DescribeCalls, append([]string(nil), deviceIDs...))
	out := make(map[string]api.Device)
	for _, id := range deviceIDs {
		if d, ok := f.devices[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

// QueryDeviceIDs returns every registered device ID; filters are not
// interpreted by the fake.
func (f *FakeDirectory) QueryDeviceIDs(_ context.Context, _ string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.devices))
	for id := range f.devices {
		ids = append(ids, id)
	}
	return ids, nil
}

// PerformAction records the call and returns the next scripted outcome.
func (f *FakeDirectory) PerformAction(_ context.Context, action string, deviceIDs []string) (*api.ActionOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ActionCalls = append(f.ActionCalls, ActionCall{
		Action: action,
		IDs:    append([]string(nil), deviceIDs...),
	})
	if len(f.ActionOutcomes) > 0 {
		outcome := f.ActionOutcomes[0]
		f.ActionOutcomes = f.ActionOutcomes[1:]
		return outcome, nil
	}
	return &api.ActionOutcome{Succeeded: append([]string(nil), deviceIDs...)}, nil
}

// MaintenanceToken returns the scripted token for a device.
func (f *FakeDirectory) MaintenanceToken(_ context.Context, deviceID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.Tokens[deviceID]
	if !ok {
		return "", fmt.Errorf("no maintenance token for %s", deviceID)
	}
	return tok, nil
}

// BulkMaintenanceToken returns the scripted tenant-wide token.
func (f *FakeDirectory) BulkMaintenanceToken(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.BulkToken, nil
}

// FakeScriptStore simulates the tenant's cloud-script and put-file store.
type FakeScriptStore struct {
	ScriptFiles map[string]api.CloudFile
	PutFiles    map[string]api.CloudFile

	// Errs, when set, fail the corresponding lookup.
	ScriptsErr  error
	PutFilesErr error
}

// NewFakeScriptStore creates an empty store.
func NewFakeScriptStore() *FakeScriptStore {
	return &FakeScriptStore{
		ScriptFiles: make(map[string]api.CloudFile),
		PutFiles:    make(map[string]api.CloudFile),
	}
}

// DescribeScripts returns the configured cloud scripts.
func (f *FakeScriptStore) DescribeScripts(_ context.Context) (map[string]api.CloudFile, error) {
	if f.ScriptsErr != nil {
		return nil, f.ScriptsErr
	}
	return f.ScriptFiles, nil
}

// DescribePutFiles returns the configured put-files.
func (f *FakeScriptStore) DescribePutFiles(_ context.Context) (map[string]api.CloudFile, error) {
	if f.PutFilesErr != nil {
		return nil, f.PutFilesErr
	}
	return f.PutFiles, nil
}

// FakeDownloader writes a placeholder artifact to the destination path so
// tests can assert on the resulting filenames.
type FakeDownloader struct {
	mu        sync.Mutex
	Downloads []DownloadCall
}

// DownloadCall records one Download invocation.
type DownloadCall struct {
	File    api.RetrievedFile
	Dest    string
	Extract bool
}

// Download records the call and creates the destination file.
func (f *FakeDownloader) Download(_ context.Context, file api.RetrievedFile, destPath string, extract bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Downloads = append(f.Downloads, DownloadCall{File: file, Dest: destPath, Extract: extract})
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(destPath, []byte(file.SHA256), 0o644); err != nil {
		return "", err
	}
	return destPath, nil
}

// NewClient bundles fakes into an api.Client for controller-level tests.
func NewClient(exec *FakeExecutor, dir *FakeDirectory, scripts *FakeScriptStore, dl *FakeDownloader) *api.Client {
	return &api.Client{
		RTR:      exec,
		Hosts:    dir,
		Scripts:  scripts,
		Files:    dl,
		Policies: nil,
		Users:    nil,
	}
}

// fakeHash produces a deterministic hex-looking digest for test artifacts.
func fakeHash(seed string) string {
	var sum uint64
	for _, r := range seed {
		sum = sum*31 + uint64(r)
	}
	h := fmt.Sprintf("%016x", sum)
	return strings.Repeat(h, 4)
}
