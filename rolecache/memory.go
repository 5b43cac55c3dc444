package rolecache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/immoflow/accessgate/roles"
)

// The cache holds the role of the active session only, so the LRU is keyed by
// a single well-known key. The LRU's TTL handling does the expiry purge.
const entryKey = "last-role"

var _ Cache = (*Memory)(nil)

// Memory is the in-process cache implementation.
type Memory struct {
	lru *expirable.LRU[string, roles.Role]
}

// NewMemory creates an in-memory cache. A non-positive ttl falls back to
// DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{lru: expirable.NewLRU[string, roles.Role](1, nil, ttl)}
}

func (m *Memory) Put(_ context.Context, role roles.Role) error {
	if role == roles.RoleNone {
		m.lru.Remove(entryKey)
		return nil
	}
	m.lru.Add(entryKey, role)
	return nil
}

func (m *Memory) Get(_ context.Context) (roles.Role, bool, error) {
	role, ok := m.lru.Get(entryKey)
	if !ok {
		return roles.RoleNone, false, nil
	}
	return role, true, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.lru.Purge()
	return nil
}
