package session

import (
	"context"
	"time"
)

// Session is the authenticated-principal record issued by the hosted identity
// provider. The service holds a read-only copy; the provider owns the
// lifecycle (created at sign-in, refreshed on token renewal, destroyed at
// sign-out).
type Session struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// EventType identifies a session-change notification from the identity
// provider.
type EventType string

const (
	EventSignedIn         EventType = "signed_in"
	EventSignedOut        EventType = "signed_out"
	EventTokenRefreshed   EventType = "token_refreshed"
	EventPasswordRecovery EventType = "password_recovery"
)

type Event struct {
	Type    EventType
	Session *Session // nil for EventSignedOut
}

// Provider is the hosted identity service as consumed by this subsystem.
type Provider interface {
	// Current returns the active session, or nil when signed out.
	Current(ctx context.Context) (*Session, error)
	// SignIn exchanges credentials for a session.
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	// Events is the stream of session-change notifications. The channel is
	// closed when the provider shuts down.
	Events() <-chan Event
}

// Refresher renews the active session before it expires. Providers that
// support renewal implement it alongside Provider; callers discover it with a
// type assertion.
type Refresher interface {
	// Refresh returns the renewed session, or ErrSessionNotFound when no
	// session is active.
	Refresh(ctx context.Context) (*Session, error)
}

// Verifier turns a raw bearer token into a Session. Implementations validate
// signature and expiry before extracting claims.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Session, error)
}
