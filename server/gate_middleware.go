package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/immoflow/accessgate/gate"
	"github.com/immoflow/accessgate/roles"
	"github.com/immoflow/accessgate/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the authenticated session
	ContextKeySession ContextKey = "session"
)

// SessionFromContext returns the session placed by WithSession, or nil.
func SessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(ContextKeySession).(*session.Session)
	return sess
}

// WithSession is middleware that resolves the bearer token to a session and
// injects it into the request context. Requests without a usable token pass
// through with no session; the gate middleware decides what that means.
func (s *Server) WithSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next(w, r)
				return
			}

			sess, err := s.verifier.Verify(r.Context(), token)
			if err != nil {
				s.log.Debug().Err(err).Msg("bearer token rejected")
				next(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireRole is middleware guarding a route behind a role requirement. The
// gate decides; a denial redirects to the gate's target (login when
// unauthenticated, access-denied otherwise).
func (s *Server) RequireRole(required roles.Role) func(http.HandlerFunc) http.HandlerFunc {
	return s.requireGate(gate.Requirement{Role: required})
}

// RequireTrustedDomain guards a route behind an email-domain requirement.
// The domain check denies before any role lookup runs.
func (s *Server) RequireTrustedDomain(domain string) func(http.HandlerFunc) http.HandlerFunc {
	return s.requireGate(gate.Requirement{EmailDomain: domain})
}

// RequireSession guards a route behind authentication only.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return s.requireGate(gate.Requirement{})
}

func (s *Server) requireGate(req gate.Requirement) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())

			result := s.gate.Check(r.Context(), sess, req)
			switch result.Decision {
			case gate.Granted:
				next(w, r)
			case gate.Denied:
				http.Redirect(w, r, result.RedirectPath, http.StatusSeeOther)
			default:
				// The request was cancelled mid-check; nothing to write.
			}
		}
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
