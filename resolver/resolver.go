// Package resolver maps an authenticated account to its role. It is the only
// place the role precedence order lives: trusted email domain first, then the
// provider-membership relation, then the generic role relation.
package resolver

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/immoflow/accessgate/roles"
)

// Resolver performs the role lookup. It is read-only: no write ever happens
// as a side effect of a resolution. Remote failures degrade to RoleNone with
// a logged diagnostic; Resolve never returns an error.
type Resolver struct {
	roleRepo      roles.Repo
	providerRepo  roles.ProviderMembershipRepo
	trustedDomain string
	retry         RetryPolicy
	sleep         SleepFunc
	log           zerolog.Logger
}

// Option modifies the Resolver instance.
type Option func(*Resolver)

func WithRetryPolicy(p RetryPolicy) Option {
	return func(r *Resolver) {
		r.retry = p
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

// WithSleep sets the backoff sleep function (primarily for testing).
func WithSleep(sleep SleepFunc) Option {
	return func(r *Resolver) {
		r.sleep = sleep
	}
}

func New(roleRepo roles.Repo, providerRepo roles.ProviderMembershipRepo, trustedDomain string, options ...Option) (*Resolver, error) {
	if roleRepo == nil {
		return nil, errors.New("[resolver.New] role repo is required")
	}
	if providerRepo == nil {
		return nil, errors.New("[resolver.New] provider membership repo is required")
	}

	r := &Resolver{
		roleRepo:      roleRepo,
		providerRepo:  providerRepo,
		trustedDomain: trustedDomain,
		retry:         DefaultRetryPolicy,
		log:           zerolog.Nop(),
	}

	for _, opt := range options {
		opt(r)
	}

	return r, nil
}

// Resolve returns the role for a user. Precedence, first match wins:
//
//  1. email on the trusted organizational domain: admin
//  2. row in the provider-membership relation: provider
//  3. row in the generic role relation: that role
//
// A missing row and a failed lookup both retry on the policy's schedule; the
// last attempt's outcome is the answer, RoleNone when nothing resolved.
func (r *Resolver) Resolve(ctx context.Context, userID, email string) roles.Role {
	if userID == "" {
		return roles.RoleNone
	}

	if roles.MatchesDomain(email, r.trustedDomain) {
		return roles.RoleAdmin
	}

	resolved := roles.RoleNone
	r.retry.Do(ctx, r.sleep, func(attempt int) bool {
		role, final := r.lookup(ctx, userID, attempt)
		resolved = role
		return final
	})
	return resolved
}

func (r *Resolver) lookup(ctx context.Context, userID string, attempt int) (roles.Role, bool) {
	isProvider, err := r.providerRepo.IsProvider(ctx, userID)
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Int("attempt", attempt).
			Msg("provider membership lookup failed")
		return roles.RoleNone, false
	}
	if isProvider {
		return roles.RoleProvider, true
	}

	role, err := r.roleRepo.Get(ctx, userID)
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Int("attempt", attempt).
			Msg("role lookup failed")
		return roles.RoleNone, false
	}
	if role == roles.RoleNone {
		// A fresh account's role row may not have landed yet.
		return roles.RoleNone, false
	}
	return role, true
}
