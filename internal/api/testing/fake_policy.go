package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/talonops/talon/internal/api"
)

// FakePolicyStore simulates the tenant's policy CRUD surface.
type FakePolicyStore struct {
	mu       sync.Mutex
	policies map[string]api.Policy

	ImportCalls []api.Policy
	ListErr     error
}

// NewFakePolicyStore creates an empty policy store.
func NewFakePolicyStore() *FakePolicyStore {
	return &FakePolicyStore{policies: make(map[string]api.Policy)}
}

// AddPolicy registers a policy document.
func (f *FakePolicyStore) AddPolicy(p api.Policy) *FakePolicyStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.policies[p.ID] = p
	return f
}

// ListPolicies returns every policy of the given kind.
func (f *FakePolicyStore) ListPolicies(_ context.Context, kind string) ([]api.Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var out []api.Policy
	for _, p := range f.policies {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out, nil
}

// DescribePolicy returns one policy by kind and ID.
func (f *FakePolicyStore) DescribePolicy(_ context.Context, kind, id string) (*api.Policy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.policies[id]
	if !ok || p.Kind != kind {
		return nil, fmt.Errorf("no %s policy with ID %s", kind, id)
	}
	return &p, nil
}

// ImportPolicy records the document and stores it under a fresh ID.
func (f *FakePolicyStore) ImportPolicy(_ context.Context, policy *api.Policy) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ImportCalls = append(f.ImportCalls, *policy)
	stored := *policy
	stored.ID = uuid.NewString()
	f.policies[stored.ID] = stored
	return stored.ID, nil
}

// FakeUserDirectory simulates the tenant's user-management surface.
type FakeUserDirectory struct {
	mu    sync.Mutex
	users map[string]api.User

	GrantCalls  []RoleCall
	RevokeCalls []RoleCall
}

// RoleCall records one GrantRoles or RevokeRoles invocation.
type RoleCall struct {
	UID   string
	Roles []string
}

// NewFakeUserDirectory creates an empty user directory.
func NewFakeUserDirectory() *FakeUserDirectory {
	return &FakeUserDirectory{users: make(map[string]api.User)}
}

// AddUser registers a user account.
func (f *FakeUserDirectory) AddUser(u api.User) *FakeUserDirectory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.UID] = u
	return f
}

// ListUsers returns every registered user.
func (f *FakeUserDirectory) ListUsers(_ context.Context) ([]api.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]api.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

// GrantRoles records the call and appends the roles to the user.
func (f *FakeUserDirectory) GrantRoles(_ context.Context, uid string, roles []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[uid]
	if !ok {
		return fmt.Errorf("no user with UID %s", uid)
	}
	f.GrantCalls = append(f.GrantCalls, RoleCall{UID: uid, Roles: append([]string(nil), roles...)})
	u.Roles = append(u.Roles, roles...)
	f.users[uid] = u
	return nil
}

// RevokeRoles records the call and removes the roles from the user.
func (f *FakeUserDirectory) RevokeRoles(_ context.Context, uid string, roles []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[uid]
	if !ok {
		return fmt.Errorf("no user with UID %s", uid)
	}
	f.RevokeCalls = append(f.RevokeCalls, RoleCall{UID: uid, Roles: append([]string(nil), roles...)})

	drop := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		drop[r] = struct{}{}
	}
	kept := u.Roles[:0]
	for _, r := range u.Roles {
		if _, gone := drop[r]; !gone {
			kept = append(kept, r)
		}
	}
	u.Roles = kept
	f.users[uid] = u
	return nil
}
