// Package localidp is the self-hosted fallback identity provider: it checks
// credentials against the accounts relation directly instead of the hosted
// auth service. Deployments configure it when no OIDC issuer is available.
package localidp

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/immoflow/accessgate/internal/errors"
	"github.com/immoflow/accessgate/provision"
	"github.com/immoflow/accessgate/session"
)

const (
	eventBuffer       = 16
	defaultSessionTTL = 30 * time.Minute
)

var _ session.Provider = (*Provider)(nil)
var _ session.Refresher = (*Provider)(nil)

type Provider struct {
	accounts   provision.AccountRepo
	sessionTTL time.Duration
	nowTime    func() time.Time

	lock    sync.RWMutex
	current *session.Session

	events chan session.Event
	log    zerolog.Logger
}

// Option modifies the Provider instance.
type Option func(*Provider)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(p *Provider) {
		p.nowTime = nowFunc
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		p.sessionTTL = ttl
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(p *Provider) {
		p.log = log
	}
}

func New(accounts provision.AccountRepo, options ...Option) (*Provider, error) {
	if accounts == nil {
		return nil, errors.New("[localidp.New] accounts repo is required")
	}

	p := &Provider{
		accounts:   accounts,
		sessionTTL: defaultSessionTTL,
		nowTime:    time.Now,
		events:     make(chan session.Event, eventBuffer),
		log:        zerolog.Nop(),
	}

	for _, opt := range options {
		opt(p)
	}

	return p, nil
}

func (p *Provider) Current(_ context.Context) (*session.Session, error) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if p.current == nil {
		return nil, nil
	}
	if p.current.Expired(p.nowTime()) {
		return nil, nil
	}
	s := *p.current
	return &s, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	account, err := p.accounts.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrAccountNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Provider.SignIn] get account")
	}

	if !provision.CheckPasswordHash(password, account.PasswordHash) {
		p.log.Info().Str("user_id", account.ID).Msg("password mismatch")
		return nil, apperrors.ErrInvalidCredentials
	}

	now := p.nowTime()
	sess := &session.Session{
		UserID:    account.ID,
		Email:     account.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(p.sessionTTL),
	}

	p.lock.Lock()
	p.current = sess
	p.lock.Unlock()

	p.emit(session.Event{Type: session.EventSignedIn, Session: sess})
	return sess, nil
}

// Refresh re-issues the active session with a fresh expiry and emits a
// token-refreshed event.
func (p *Provider) Refresh(_ context.Context) (*session.Session, error) {
	p.lock.Lock()
	if p.current == nil || p.current.Expired(p.nowTime()) {
		p.lock.Unlock()
		return nil, apperrors.ErrSessionNotFound
	}

	now := p.nowTime()
	sess := &session.Session{
		UserID:    p.current.UserID,
		Email:     p.current.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(p.sessionTTL),
	}
	p.current = sess
	p.lock.Unlock()

	p.emit(session.Event{Type: session.EventTokenRefreshed, Session: sess})
	return sess, nil
}

func (p *Provider) SignOut(_ context.Context) error {
	p.lock.Lock()
	p.current = nil
	p.lock.Unlock()

	p.emit(session.Event{Type: session.EventSignedOut})
	return nil
}

func (p *Provider) Events() <-chan session.Event {
	return p.events
}

// SignalPasswordRecovery publishes a password-recovery event for the given
// account. Called when a reset token has been issued.
func (p *Provider) SignalPasswordRecovery(email string) {
	p.emit(session.Event{Type: session.EventPasswordRecovery, Session: &session.Session{Email: email}})
}

func (p *Provider) emit(ev session.Event) {
	select {
	case p.events <- ev:
	default:
		p.log.Warn().Str("event", string(ev.Type)).Msg("session event dropped, subscriber too slow")
	}
}
