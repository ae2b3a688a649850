package api

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/talonops/talon/internal/errors"
)

// Credentials carries everything an auth backend needs to reach a tenant.
type Credentials struct {
	Cloud        string
	ClientID     string
	ClientSecret string

	// MemberCID selects a child tenant; only the mssp backend reads it.
	MemberCID string
}

// BackendFactory authenticates against the platform and returns the
// capability surfaces for one tenant.
type BackendFactory func(ctx context.Context, creds Credentials) (*Client, error)

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
)

// RegisterBackend makes an auth backend available by name. It follows the
// database/sql driver convention: adapters register themselves from init(),
// and registering the same name twice panics.
func RegisterBackend(name string, factory BackendFactory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if factory == nil {
		panic("api: RegisterBackend called with a nil factory")
	}
	if _, dup := backends[name]; dup {
		panic(fmt.Sprintf("api: backend %q registered twice", name))
	}
	backends[name] = factory
}

// Connect authenticates with the named backend.
func Connect(ctx context.Context, backend string, creds Credentials) (*Client, error) {
	backendsMu.RLock()
	factory, ok := backends[backend]
	backendsMu.RUnlock()

	if !ok {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Auth backend %q is not available in this build", backend),
			availableBackendsHint())
	}

	client, err := factory(ctx, creds)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrAPI,
			"Authentication with the platform failed",
			"Check the profile's cloud region and API credentials")
	}
	return client, nil
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func availableBackendsHint() string {
	names := Backends()
	if len(names) == 0 {
		return "This build has no auth backends compiled in"
	}
	return "Available backends: " + strings.Join(names, ", ")
}
