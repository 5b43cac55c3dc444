//go:build dev

package gate

import "github.com/immoflow/accessgate/session"

// DevelopmentFallbackPolicy unblocks local work against an empty or unseeded
// role store: stalled and unresolved checks grant instead of deny, with a
// visible warning. The build tag keeps this policy out of production
// binaries entirely.
type DevelopmentFallbackPolicy struct{}

var _ FallbackPolicy = DevelopmentFallbackPolicy{}

func (DevelopmentFallbackPolicy) OnTimeout(*session.Session, Requirement) Decision {
	return Granted
}

func (DevelopmentFallbackPolicy) OnUnresolved(*session.Session, Requirement) Decision {
	return Granted
}

func defaultFallbackPolicy() FallbackPolicy {
	return DevelopmentFallbackPolicy{}
}
