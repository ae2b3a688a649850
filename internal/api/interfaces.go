package api

import (
	"context"
	"time"
)

// RemoteExecutor is the batch remote-execution capability. One value spans
// the whole batch session: Connect opens (or reopens) per-device channels,
// and every later call operates on the most recent connection set.
//
// Connect is idempotent and safe to call again to reconnect with different
// queueing settings. Every call carries the session's current timeout as an
// explicit parameter; a device that exceeds it surfaces as Complete=false
// in its result, never as a call-level error.
type RemoteExecutor interface {
	Connect(ctx context.Context, deviceIDs []string, queueing bool, timeout time.Duration) (map[string]ConnectionResult, error)
	RunCommand(ctx context.Context, command string, timeout time.Duration) (map[string]CommandResult, error)
	Get(ctx context.Context, filePath string, timeout time.Duration) ([]GetRequest, error)
	GetStatus(ctx context.Context, requestID string, timeout time.Duration) ([]RetrievedFile, error)
	RefreshSessions(ctx context.Context, timeout time.Duration) error
}

// DeviceDirectory resolves device identifiers to metadata and performs
// host-level actions.
type DeviceDirectory interface {
	// Describe returns metadata for the given device IDs. Devices the
	// platform no longer knows about are simply absent from the result.
	Describe(ctx context.Context, deviceIDs []string) (map[string]Device, error)

	// QueryDeviceIDs returns the IDs of all devices matching the filter.
	// An empty filter matches every device in the tenant.
	QueryDeviceIDs(ctx context.Context, filter string) ([]string, error)

	// PerformAction runs a host action (containment) against a batch of
	// device IDs and reports per-device outcomes.
	PerformAction(ctx context.Context, action string, deviceIDs []string) (*ActionOutcome, error)

	MaintenanceToken(ctx context.Context, deviceID string) (string, error)
	BulkMaintenanceToken(ctx context.Context) (string, error)
}

// ScriptStore lists the cloud scripts and put-files stored in the tenant.
type ScriptStore interface {
	DescribeScripts(ctx context.Context) (map[string]CloudFile, error)
	DescribePutFiles(ctx context.Context) (map[string]CloudFile, error)
}

// Downloader fetches a retrieved file from cloud storage to a local path.
// When extract is true the intermediate 7z container is unpacked and
// deleted, and the returned path is the extracted artifact.
type Downloader interface {
	Download(ctx context.Context, file RetrievedFile, destPath string, extract bool) (string, error)
}

// PolicyStore is the policy CRUD surface used by the policies commands.
type PolicyStore interface {
	ListPolicies(ctx context.Context, kind string) ([]Policy, error)
	DescribePolicy(ctx context.Context, kind, id string) (*Policy, error)
	ImportPolicy(ctx context.Context, policy *Policy) (string, error)
}

// UserDirectory is the user-management surface used by the users commands.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]User, error)
	GrantRoles(ctx context.Context, uid string, roles []string) error
	RevokeRoles(ctx context.Context, uid string, roles []string) error
}

// Client bundles the authenticated capability surfaces that an auth backend
// hands back. Commands pull out only the surfaces they need.
type Client struct {
	RTR      RemoteExecutor
	Hosts    DeviceDirectory
	Scripts  ScriptStore
	Files    Downloader
	Policies PolicyStore
	Users    UserDirectory
}
