// Package gate decides whether protected content may be shown to the current
// session. A check runs Idle → Checking → {Granted | Denied}: the domain
// requirement is tested first, then the cached role, then the resolver under
// a safety timeout that forces a terminal decision if the role store stalls.
package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/immoflow/accessgate/notify"
	"github.com/immoflow/accessgate/rolecache"
	"github.com/immoflow/accessgate/roles"
	"github.com/immoflow/accessgate/session"
)

// DefaultCheckTimeout bounds how long Checking may persist before a forced
// decision.
const DefaultCheckTimeout = 45 * time.Second

// RoleResolver is the lookup the gate drives. resolver.Resolver implements
// it; tests stub it.
type RoleResolver interface {
	Resolve(ctx context.Context, userID, email string) roles.Role
}

type nopNotifier struct{}

func (nopNotifier) Notify(notify.Notification) {}

// Gate evaluates access checks for one mounted guard. Decisions are
// monotonic: once reached for a (session, requirement) pair, the same result
// is returned without re-running resolution until one of the inputs changes.
type Gate struct {
	resolver      RoleResolver
	cache         rolecache.Cache
	notifier      notify.Notifier
	fallback      FallbackPolicy
	timeout       time.Duration
	trustedDomain string
	log           zerolog.Logger

	lock       sync.Mutex
	lastKey    string
	lastUserID string
	lastResult *Result
}

// Option modifies the Gate instance.
type Option func(*Gate)

func WithTimeout(d time.Duration) Option {
	return func(g *Gate) {
		g.timeout = d
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(g *Gate) {
		g.notifier = n
	}
}

// WithFallbackPolicy overrides the build-selected fallback (primarily for
// testing; production wiring never calls this).
func WithFallbackPolicy(p FallbackPolicy) Option {
	return func(g *Gate) {
		g.fallback = p
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(g *Gate) {
		g.log = log
	}
}

func New(res RoleResolver, cache rolecache.Cache, trustedDomain string, options ...Option) (*Gate, error) {
	if res == nil {
		return nil, errors.New("[gate.New] resolver is required")
	}
	if cache == nil {
		return nil, errors.New("[gate.New] role cache is required")
	}

	g := &Gate{
		resolver:      res,
		cache:         cache,
		notifier:      nopNotifier{},
		fallback:      defaultFallbackPolicy(),
		timeout:       DefaultCheckTimeout,
		trustedDomain: trustedDomain,
		log:           zerolog.Nop(),
	}

	for _, opt := range options {
		opt(g)
	}

	return g, nil
}

// Check evaluates the requirement for the session. It blocks until a
// terminal decision or the safety timeout; cancelling ctx aborts the check
// with a Pending result that is never recorded.
func (g *Gate) Check(ctx context.Context, sess *session.Session, req Requirement) Result {
	if sess == nil {
		return Result{Decision: Denied, Cause: CauseUnauthenticated, RedirectPath: PathLogin}
	}

	key := suppressionKey(sess.UserID, req)

	g.lock.Lock()
	if g.lastResult != nil && g.lastKey == key {
		res := *g.lastResult
		g.lock.Unlock()
		return res
	}
	if g.lastUserID != "" && g.lastUserID != sess.UserID {
		// The cached role belongs to the previous account.
		if err := g.cache.Clear(ctx); err != nil {
			g.log.Warn().Err(err).Msg("role cache clear failed on account switch")
		}
	}
	g.lock.Unlock()

	res := g.run(ctx, sess, req)

	if res.Decision != Pending {
		g.lock.Lock()
		g.lastKey = key
		g.lastUserID = sess.UserID
		g.lastResult = &res
		g.lock.Unlock()
	}
	return res
}

// Reset clears the recorded decision and the role cache, typically on
// sign-out.
func (g *Gate) Reset(ctx context.Context) {
	g.lock.Lock()
	g.lastKey = ""
	g.lastUserID = ""
	g.lastResult = nil
	g.lock.Unlock()

	if err := g.cache.Clear(ctx); err != nil {
		g.log.Warn().Err(err).Msg("role cache clear failed on reset")
	}
}

func (g *Gate) run(ctx context.Context, sess *session.Session, req Requirement) Result {
	// No requirement: any authenticated session passes.
	if req.zero() {
		return Result{Decision: Granted}
	}

	// The domain requirement denies outright, before any role lookup.
	if req.EmailDomain != "" {
		if !roles.MatchesDomain(sess.Email, req.EmailDomain) {
			g.notifyDenied(sess, CauseDomainMismatch,
				fmt.Sprintf("access restricted to @%s accounts", req.EmailDomain))
			return g.denied(CauseDomainMismatch, roles.RoleNone)
		}
		if req.Role == roles.RoleNone {
			return Result{Decision: Granted}
		}
	}

	if role, ok := g.cachedRole(ctx); ok {
		return g.decide(sess, req, role)
	}

	role, timedOut, aborted := g.resolveBounded(ctx, sess)
	if aborted {
		return Result{Decision: Pending}
	}
	if timedOut {
		return g.forced(sess, req)
	}

	// Only a fresh resolution writes the cache. A hit never rewrites the
	// entry, so the expiry stays anchored at resolution time.
	if role != roles.RoleNone {
		if err := g.cache.Put(ctx, role); err != nil {
			g.log.Warn().Err(err).Msg("role cache write failed")
		}
	}
	return g.decide(sess, req, role)
}

func (g *Gate) cachedRole(ctx context.Context) (roles.Role, bool) {
	role, ok, err := g.cache.Get(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("role cache read failed, treating as miss")
		return roles.RoleNone, false
	}
	return role, ok
}

// resolveBounded runs the resolver under the safety timeout. The countdown
// is cancelled, not ignored, the instant a real result arrives, so a stale
// forced decision can never overwrite a legitimate one.
func (g *Gate) resolveBounded(ctx context.Context, sess *session.Session) (role roles.Role, timedOut, aborted bool) {
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resCh := make(chan roles.Role, 1)
	go func() {
		resCh <- g.resolver.Resolve(rctx, sess.UserID, sess.Email)
	}()

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case r := <-resCh:
		return r, false, false
	case <-timer.C:
		return roles.RoleNone, true, false
	case <-ctx.Done():
		return roles.RoleNone, false, true
	}
}

func (g *Gate) decide(sess *session.Session, req Requirement, role roles.Role) Result {
	if role == roles.RoleNone {
		if g.fallback.OnUnresolved(sess, req) == Granted {
			g.notifyWarning(sess, CauseNoRoleAssigned,
				"no role resolved, development fallback granted access")
			return Result{Decision: Granted}
		}
		g.notifyDenied(sess, CauseNoRoleAssigned, "no role is assigned to this account")
		return g.denied(CauseNoRoleAssigned, role)
	}

	if role.Satisfies(req.Role) {
		return Result{Decision: Granted, Role: role}
	}

	g.notifyDenied(sess, CauseRoleMismatch,
		fmt.Sprintf("role %q does not grant %q access", role.String(), req.Role.String()))
	return g.denied(CauseRoleMismatch, role)
}

func (g *Gate) forced(sess *session.Session, req Requirement) Result {
	if g.fallback.OnTimeout(sess, req) == Granted {
		g.notifyWarning(sess, CauseTimeout, "role check timed out, defaulting to granted")
		return Result{Decision: Granted}
	}
	if req.Role == roles.RoleAdmin && roles.MatchesDomain(sess.Email, g.trustedDomain) {
		return Result{Decision: Granted, Role: roles.RoleAdmin}
	}
	g.notifyDenied(sess, CauseTimeout, "permission check timed out")
	return g.denied(CauseTimeout, roles.RoleNone)
}

func (g *Gate) denied(cause DenyCause, role roles.Role) Result {
	return Result{
		Decision:     Denied,
		Cause:        cause,
		Role:         role,
		RedirectPath: PathAccessDenied,
	}
}

func (g *Gate) notifyDenied(sess *session.Session, cause DenyCause, msg string) {
	g.log.Info().Str("user_id", sess.UserID).Str("cause", string(cause)).Msg("access denied")
	g.notifier.Notify(notify.Notification{
		Level:   notify.LevelError,
		Key:     notificationKey(cause, sess.UserID),
		Message: msg,
	})
}

func (g *Gate) notifyWarning(sess *session.Session, cause DenyCause, msg string) {
	g.log.Warn().Str("user_id", sess.UserID).Str("cause", string(cause)).Msg(msg)
	g.notifier.Notify(notify.Notification{
		Level:   notify.LevelWarning,
		Key:     notificationKey(cause, sess.UserID),
		Message: msg,
	})
}

func suppressionKey(userID string, req Requirement) string {
	return userID + "|" + string(req.Role) + "|" + req.EmailDomain
}

func notificationKey(cause DenyCause, userID string) string {
	return "gate:" + string(cause) + ":" + userID
}
