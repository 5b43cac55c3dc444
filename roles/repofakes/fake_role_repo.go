package repofakes

import (
	"context"
	"sync"

	"github.com/immoflow/accessgate/roles"
)

var _ roles.Repo = (*FakeRoleRepo)(nil)
var _ roles.ProviderMembershipRepo = (*FakeProviderMembershipRepo)(nil)

// FakeRoleRepo is an in-memory role relation for tests. Err makes every Get
// fail; FailN makes the first N Get calls fail with FailErr and then recover.
type FakeRoleRepo struct {
	lock     sync.Mutex
	rows     map[string]roles.Role
	Err      error
	FailN    int
	FailErr  error
	GetCalls int
}

func NewFakeRoleRepo() *FakeRoleRepo {
	return &FakeRoleRepo{rows: make(map[string]roles.Role)}
}

func (f *FakeRoleRepo) Get(ctx context.Context, userID string) (roles.Role, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.GetCalls++
	if f.FailN > 0 {
		f.FailN--
		return roles.RoleNone, f.FailErr
	}
	if f.Err != nil {
		return roles.RoleNone, f.Err
	}
	return f.rows[userID], nil
}

func (f *FakeRoleRepo) Exists(ctx context.Context, userID string) (bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	_, ok := f.rows[userID]
	return ok, nil
}

func (f *FakeRoleRepo) Insert(ctx context.Context, userID string, role roles.Role) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if _, ok := f.rows[userID]; ok {
		return nil
	}
	f.rows[userID] = role
	return nil
}

func (f *FakeRoleRepo) Delete(ctx context.Context, userID string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	delete(f.rows, userID)
	return nil
}

// Set seeds a row directly, bypassing the Insert conflict guard.
func (f *FakeRoleRepo) Set(userID string, role roles.Role) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.rows[userID] = role
}

// FakeProviderMembershipRepo is an in-memory provider relation for tests.
type FakeProviderMembershipRepo struct {
	lock    sync.Mutex
	members map[string]struct{}
	Err     error
	Calls   int
}

func NewFakeProviderMembershipRepo() *FakeProviderMembershipRepo {
	return &FakeProviderMembershipRepo{members: make(map[string]struct{})}
}

func (f *FakeProviderMembershipRepo) IsProvider(ctx context.Context, userID string) (bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.Calls++
	if f.Err != nil {
		return false, f.Err
	}
	_, ok := f.members[userID]
	return ok, nil
}

func (f *FakeProviderMembershipRepo) Add(userID string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.members[userID] = struct{}{}
}
