package roles_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/immoflow/accessgate/roles"
)

func TestSatisfies(t *testing.T) {
	tests := []struct {
		name     string
		held     roles.Role
		required roles.Role
		want     bool
	}{
		{"exact match", roles.RoleUser, roles.RoleUser, true},
		{"admin bypasses role checks", roles.RoleAdmin, roles.RoleProvider, true},
		{"admin satisfies admin", roles.RoleAdmin, roles.RoleAdmin, true},
		{"manager inherits user access", roles.RoleManager, roles.RoleUser, true},
		{"manager does not get admin", roles.RoleManager, roles.RoleAdmin, false},
		{"manager does not get provider", roles.RoleManager, roles.RoleProvider, false},
		{"user does not get manager", roles.RoleUser, roles.RoleManager, false},
		{"provider does not get user", roles.RoleProvider, roles.RoleUser, false},
		{"no requirement passes anything", roles.RoleNone, roles.RoleNone, true},
		{"none never satisfies a requirement", roles.RoleNone, roles.RoleUser, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.held.Satisfies(tc.required))
		})
	}
}

func TestMatchesDomain(t *testing.T) {
	require.True(t, roles.MatchesDomain("alice@trusted.example", "trusted.example"))
	require.True(t, roles.MatchesDomain("Alice@Trusted.Example", "trusted.example"))
	require.False(t, roles.MatchesDomain("bob@other.example", "trusted.example"))
	require.False(t, roles.MatchesDomain("mallory@evil-trusted.example", "trusted.example"))
	require.False(t, roles.MatchesDomain("", "trusted.example"))
	require.False(t, roles.MatchesDomain("alice@trusted.example", ""))
}

func TestValid(t *testing.T) {
	require.True(t, roles.RoleAdmin.Valid())
	require.True(t, roles.RoleProvider.Valid())
	require.False(t, roles.RoleNone.Valid())
	require.False(t, roles.Role("superuser").Valid())
}
