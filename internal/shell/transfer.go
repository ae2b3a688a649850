package shell

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/talonops/talon/internal/api"
	"github.com/talonops/talon/internal/logger"
)

// TransferTracker owns the asynchronous file-retrieval workflow: issuing
// batch get requests, remembering the most recent request IDs so get_status
// and download can default to them, and pulling completed uploads down to
// the local filesystem.
type TransferTracker struct {
	exec    api.RemoteExecutor
	dir     api.DeviceDirectory
	files   api.Downloader
	meta    *MetadataCache
	audit   *AuditLog
	console *Console
	log     logger.Logger
	timeout func() time.Duration
	spin    func(string, func() error) error

	lastRequestIDs []string

	// Counters over the most recent get / status check, retained so
	// scripted callers can assert on batch progress.
	lastSuccessfulRequests int
	lastCompletedUploads   int
}

// retrievedFileWithHost pairs a retrieved file with its resolved hostname.
type retrievedFileWithHost struct {
	file     api.RetrievedFile
	hostname string
}

// NewTransferTracker wires a tracker. spin may be nil for a passthrough.
func NewTransferTracker(
	exec api.RemoteExecutor,
	dir api.DeviceDirectory,
	files api.Downloader,
	meta *MetadataCache,
	audit *AuditLog,
	console *Console,
	log logger.Logger,
	timeout func() time.Duration,
	spin func(string, func() error) error,
) *TransferTracker {
	if spin == nil {
		spin = func(_ string, fn func() error) error { return fn() }
	}
	return &TransferTracker{
		exec:    exec,
		dir:     dir,
		files:   files,
		meta:    meta,
		audit:   audit,
		console: console,
		log:     log,
		timeout: timeout,
		spin:    spin,
	}
}

// LastRequestIDs returns the request IDs recorded by the most recent Get.
func (t *TransferTracker) LastRequestIDs() []string {
	return append([]string(nil), t.lastRequestIDs...)
}

// Get asks every connected device to upload the file at path to the cloud.
// The per-device acknowledgements are written to the audit log under the
// literal command name "batch_get" so the CSV distinguishes the request
// from the later download.
func (t *TransferTracker) Get(ctx context.Context, path string) error {
	var requests []api.GetRequest
	err := t.spin("", func() error {
		var innerErr error
		requests, innerErr = t.exec.Get(ctx, path, t.timeout())
		return innerErr
	})
	if err != nil {
		return err
	}

	t.lastRequestIDs = nil
	resources := make(map[string]api.GetResult)
	for _, request := range requests {
		if request.ID == "" {
			continue
		}
		t.lastRequestIDs = append(t.lastRequestIDs, request.ID)
		for aid, result := range request.Devices {
			resources[aid] = result
		}
	}

	if len(resources) == 0 {
		t.console.Error("The requested file does not exist on any connected hosts")
		return nil
	}

	t.console.Info("Initialised batch get requests with IDs:")
	for _, id := range t.lastRequestIDs {
		t.console.Print("- %s", id)
	}
	t.console.Print("Use the get_status command to check the batch IDs shown above")

	t.lastSuccessfulRequests = 0
	t.lastCompletedUploads = 0
	for aid, result := range resources {
		stdout := result.Stdout

		// A successful request echoes the filename to stdout with an empty
		// stderr; queued requests do not count until they actually run.
		successful := stdout != "" && !result.OfflineQueued
		if result.OfflineQueued {
			stdout = "[QUEUED] " + stdout
		}

		if writeErr := t.audit.Write("batch_get", aid, t.meta.Hostname(aid), result.Complete, stdout, result.Stderr); writeErr != nil {
			t.console.Error("%v", writeErr)
		}
		if successful {
			t.lastSuccessfulRequests++
		}
	}

	if flushErr := t.audit.Flush(); flushErr != nil {
		t.console.Error("%v", flushErr)
	}
	return nil
}

// Status reports the uploads completed so far for the given request ID, or
// for the most recent get when explicitID is empty.
func (t *TransferTracker) Status(ctx context.Context, explicitID string) error {
	requestIDs, ok := t.resolveRequestIDs(explicitID)
	if !ok {
		return nil
	}

	files, err := t.searchRetrievedFiles(ctx, requestIDs)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		t.console.Warn("No GET files in that batch have been uploaded.")
	}
	return nil
}

// Download pulls every completed upload in a batch into destination. Each
// retrieval is audited under the literal command name "download".
func (t *TransferTracker) Download(ctx context.Context, destination, explicitID string, extract bool) error {
	info, err := os.Stat(destination)
	if err != nil || !info.IsDir() {
		t.console.Error("%s is not a valid directory", destination)
		return nil
	}

	requestIDs, ok := t.resolveRequestIDs(explicitID)
	if !ok {
		return nil
	}

	files, err := t.searchRetrievedFiles(ctx, requestIDs)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		t.console.Warn("No GET files in that batch are available for download yet.")
		return nil
	}

	for _, entry := range files {
		t.console.Info("Downloading %s from %s (AID: %s)",
			entry.file.Filename, entry.hostname, entry.file.DeviceID)

		localName := OutputFileName(entry.file, entry.hostname)
		fullPath := filepath.Join(destination, localName)

		downloadErr := t.spin("", func() error {
			_, innerErr := t.files.Download(ctx, entry.file, fullPath, extract)
			return innerErr
		})
		if downloadErr != nil {
			t.console.Error("Failed to download %s: %v", entry.file.Filename, downloadErr)
			t.log.Error("download of %s from %s failed: %v", entry.file.Filename, entry.file.DeviceID, downloadErr)
			continue
		}

		details := "destination=" + destination +
			" | extracted=" + strconv.FormatBool(extract) +
			" | sha256=" + entry.file.SHA256
		if writeErr := t.audit.Write("download", entry.file.DeviceID, entry.hostname, true, entry.file.Filename, details); writeErr != nil {
			t.console.Error("%v", writeErr)
		}
	}

	if flushErr := t.audit.Flush(); flushErr != nil {
		t.console.Error("%v", flushErr)
	}
	return nil
}

// resolveRequestIDs selects the batch request IDs to inspect: an explicit
// ID wins, then the most recent get. With neither, the user is told to run
// get first and ok is false.
func (t *TransferTracker) resolveRequestIDs(explicitID string) ([]string, bool) {
	if explicitID != "" {
		return []string{explicitID}, true
	}
	if len(t.lastRequestIDs) > 0 {
		return t.lastRequestIDs, true
	}
	t.console.Error("You must execute a batch get command first, or supply a batch get request ID")
	return nil, false
}

// searchRetrievedFiles polls the upload status of each request and resolves
// hostnames, fetching metadata in one batch for any devices not yet cached.
// Devices that still cannot be resolved get the NO-HOSTNAME placeholder.
func (t *TransferTracker) searchRetrievedFiles(ctx context.Context, requestIDs []string) ([]retrievedFileWithHost, error) {
	var files []api.RetrievedFile
	err := t.spin("", func() error {
		for _, requestID := range requestIDs {
			batch, innerErr := t.exec.GetStatus(ctx, requestID, t.timeout())
			if innerErr != nil {
				return innerErr
			}
			files = append(files, batch...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	var unknownAIDs []string
	for _, file := range files {
		if _, ok := t.meta.Get(file.DeviceID); !ok {
			unknownAIDs = append(unknownAIDs, file.DeviceID)
		}
	}
	if len(unknownAIDs) > 0 {
		devices, descErr := t.dir.Describe(ctx, unknownAIDs)
		if descErr != nil {
			t.log.Warn("could not resolve %d device(s) by ID: %v", len(unknownAIDs), descErr)
		} else {
			t.meta.Merge(devices)
		}
	}

	t.lastCompletedUploads = 0
	results := make([]retrievedFileWithHost, 0, len(files))
	for _, file := range files {
		hostname := "NO-HOSTNAME"
		if device, ok := t.meta.Get(file.DeviceID); ok && device.Hostname != "" {
			hostname = device.Hostname
		}

		t.console.Info("Upload from %s (%s)", file.DeviceID, hostname)
		t.console.Dim("%s (SHA256 hash: %s)", file.Filename, file.SHA256)
		t.console.Dim("Uploaded bytes: %d", file.Size)

		t.lastCompletedUploads++
		results = append(results, retrievedFileWithHost{file: file, hostname: hostname})
	}

	return results, nil
}
