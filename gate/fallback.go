package gate

import "github.com/immoflow/accessgate/session"

// FallbackPolicy decides what happens when a check cannot reach a real
// verdict: the safety timeout fired, or resolution exhausted its retries
// without a role. Production builds always deny; the dev build tag swaps in
// the permissive policy.
type FallbackPolicy interface {
	OnTimeout(sess *session.Session, req Requirement) Decision
	OnUnresolved(sess *session.Session, req Requirement) Decision
}

type denyFallback struct{}

var _ FallbackPolicy = denyFallback{}

func (denyFallback) OnTimeout(*session.Session, Requirement) Decision {
	return Denied
}

func (denyFallback) OnUnresolved(*session.Session, Requirement) Decision {
	return Denied
}
