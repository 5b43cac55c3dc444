// Package oidcidp implements session.Provider against the platform's hosted
// auth service, using OIDC discovery for token verification and the resource
// owner password grant for credential sign-in.
package oidcidp

import (
	"context"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	apperrors "github.com/immoflow/accessgate/internal/errors"
	"github.com/immoflow/accessgate/session"
)

var _ session.Provider = (*Provider)(nil)
var _ session.Verifier = (*Provider)(nil)
var _ session.Refresher = (*Provider)(nil)

const eventBuffer = 16

type Provider struct {
	oauthCfg *oauth2.Config
	verifier *oidc.IDTokenVerifier

	lock    sync.RWMutex
	current *session.Session
	token   *oauth2.Token

	events chan session.Event
	log    zerolog.Logger
}

// New performs OIDC discovery against the hosted auth service and builds the
// provider. The clientID/clientSecret pair identifies this backend to the
// auth service.
func New(ctx context.Context, issuerURL, clientID, clientSecret string, log zerolog.Logger) (*Provider, error) {
	oidcProvider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, errors.Wrap(err, "[oidcidp.New] discovery")
	}

	return &Provider{
		oauthCfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     oidcProvider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email"},
		},
		verifier: oidcProvider.Verifier(&oidc.Config{ClientID: clientID}),
		events:   make(chan session.Event, eventBuffer),
		log:      log,
	}, nil
}

func (p *Provider) Current(_ context.Context) (*session.Session, error) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if p.current == nil {
		return nil, nil
	}
	s := *p.current
	return &s, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	token, err := p.oauthCfg.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		p.log.Warn().Err(err).Msg("sign-in rejected by identity provider")
		return nil, apperrors.ErrInvalidCredentials
	}

	sess, err := p.sessionFromToken(ctx, token)
	if err != nil {
		return nil, err
	}

	p.lock.Lock()
	p.current = sess
	p.token = token
	p.lock.Unlock()

	p.emit(session.Event{Type: session.EventSignedIn, Session: sess})
	return sess, nil
}

func (p *Provider) SignOut(_ context.Context) error {
	p.lock.Lock()
	p.current = nil
	p.token = nil
	p.lock.Unlock()

	p.emit(session.Event{Type: session.EventSignedOut})
	return nil
}

// Refresh renews the current session via the refresh token and emits a
// token-refreshed event.
func (p *Provider) Refresh(ctx context.Context) (*session.Session, error) {
	p.lock.RLock()
	token := p.token
	p.lock.RUnlock()
	if token == nil {
		return nil, apperrors.ErrSessionNotFound
	}

	fresh, err := p.oauthCfg.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, errors.Wrap(err, "[Provider.Refresh] token source")
	}

	sess, err := p.sessionFromToken(ctx, fresh)
	if err != nil {
		return nil, err
	}

	p.lock.Lock()
	p.current = sess
	p.token = fresh
	p.lock.Unlock()

	p.emit(session.Event{Type: session.EventTokenRefreshed, Session: sess})
	return sess, nil
}

// SignalPasswordRecovery publishes a password-recovery event for the given
// account. Called when a reset token has been issued for the current user.
func (p *Provider) SignalPasswordRecovery(email string) {
	p.emit(session.Event{Type: session.EventPasswordRecovery, Session: &session.Session{Email: email}})
}

func (p *Provider) Events() <-chan session.Event {
	return p.events
}

// Verify implements session.Verifier for bearer-token requests.
func (p *Provider) Verify(ctx context.Context, rawToken string) (*session.Session, error) {
	idToken, err := p.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrInvalidToken, err.Error())
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.Wrap(err, "[Provider.Verify] claims")
	}

	return &session.Session{
		UserID:    idToken.Subject,
		Email:     claims.Email,
		IssuedAt:  idToken.IssuedAt,
		ExpiresAt: idToken.Expiry,
	}, nil
}

func (p *Provider) sessionFromToken(ctx context.Context, token *oauth2.Token) (*session.Session, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		// Access-token-only responses still carry expiry information.
		return &session.Session{
			IssuedAt:  time.Now(),
			ExpiresAt: token.Expiry,
		}, nil
	}
	return p.Verify(ctx, rawIDToken)
}

func (p *Provider) emit(ev session.Event) {
	select {
	case p.events <- ev:
	default:
		p.log.Warn().Str("event", string(ev.Type)).Msg("session event dropped, subscriber too slow")
	}
}
