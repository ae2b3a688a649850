// Package api defines the capability surfaces the toolkit consumes from the
// Talon cloud platform, along with the wire-adjacent types they exchange.
// The toolkit never speaks the platform protocol itself; an authenticated
// SDK adapter (or a test fake) satisfies these interfaces.
package api

// Platform families reported by the device directory.
const (
	PlatformWindows = "Windows"
	PlatformLinux   = "Linux"
	PlatformMac     = "Mac"
)

// Containment actions accepted by DeviceDirectory.PerformAction.
const (
	ActionContain         = "contain"
	ActionLiftContainment = "lift_containment"
)

// Device describes one managed endpoint. Hostname may be empty: endpoints
// that have not checked in properly can be nameless.
type Device struct {
	ID                string
	Hostname          string
	Platform          string
	LastSeen          string
	LocalIP           string
	OSVersion         string
	MachineDomain     string
	ContainmentStatus string
	Tags              []string
}

// ConnectionResult is the per-device outcome of a batch session connect.
// BaseCommand is "pwd" on a fresh connection: the platform probes the
// working directory and echoes it to Stdout.
type ConnectionResult struct {
	AID           string
	Complete      bool
	OfflineQueued bool
	Stdout        string
	Stderr        string
	BaseCommand   string
}

// Connected reports whether the device is usable in the batch session,
// either live or held in the offline queue.
func (r ConnectionResult) Connected() bool {
	return r.Complete || r.OfflineQueued
}

// CommandResult is the per-device outcome of one dispatched command.
// Errors carries platform-reported error messages; a device that timed out
// or is unsupported reports Complete=false with the reason in Errors.
type CommandResult struct {
	Complete bool
	Stdout   string
	Stderr   string
	Errors   []string
}

// GetResult is the per-device outcome of a batch get (upload-from-endpoint)
// request. Stdout carries the name of the file to be uploaded.
type GetResult struct {
	Complete      bool
	Stdout        string
	Stderr        string
	OfflineQueued bool
}

// GetRequest identifies one batch get operation still in flight.
type GetRequest struct {
	ID      string
	Devices map[string]GetResult
}

// RetrievedFile describes one file a device has uploaded to cloud storage,
// pending download to the operator's workstation. Filename is the remote
// path and may use either path separator.
type RetrievedFile struct {
	DeviceID string
	Filename string
	SHA256   string
	Size     int64
}

// CloudFile describes a script or put-file stored in the tenant.
type CloudFile struct {
	ID          string
	Name        string
	Description string
	Content     string
	Size        int64
	CreatedBy   string
	CreatedAt   string
	ModifiedBy  string
	ModifiedAt  string
}

// ActionError is one per-device failure from a host action.
type ActionError struct {
	Code    int
	Message string
}

// ActionOutcome aggregates one batch of a host action (containment).
type ActionOutcome struct {
	Succeeded []string
	Errors    []ActionError
}

// Policy is a platform policy document. Settings is schemaless on purpose:
// the platform owns the schema and the toolkit round-trips it for
// export/import.
type Policy struct {
	ID          string                 `yaml:"id,omitempty"`
	Kind        string                 `yaml:"kind"`
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description,omitempty"`
	Platform    string                 `yaml:"platform"`
	Enabled     bool                   `yaml:"enabled"`
	Settings    map[string]interface{} `yaml:"settings,omitempty"`
}

// User is a tenant user account.
type User struct {
	UID       string
	Email     string
	FirstName string
	LastName  string
	Roles     []string
}
