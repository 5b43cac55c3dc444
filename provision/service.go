// Package provision covers the account-lifecycle functions that used to run
// as standalone serverless handlers: account creation with a default role,
// and password-reset issuance and consumption.
package provision

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/immoflow/accessgate/internal/errors"
	"github.com/immoflow/accessgate/mailer"
	"github.com/immoflow/accessgate/roles"
)

const (
	resetTokenLength = 32
	resetTokenTTL    = time.Hour

	// DefaultRole is written for accounts created without an explicit tier.
	DefaultRole = roles.RoleUser
)

// Repos holds all repository dependencies for the Service.
type Repos struct {
	Accounts AccountRepo
	Resets   ResetTokenRepo
	Roles    roles.Repo
}

// RecoveryNotifier is told when a password reset has been issued for an
// account, so the identity provider can publish a password-recovery session
// event. Both identity providers implement it.
type RecoveryNotifier interface {
	SignalPasswordRecovery(email string)
}

type Service struct {
	repos    Repos
	mail     mailer.Sender
	baseURL  string
	recovery RecoveryNotifier
	nowTime  func() time.Time // nowTime function (injectable for testing)
	log      zerolog.Logger
}

// Option defines a function type to modify the Service instance.
type Option func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// WithRecoveryNotifier sets the sink for password-recovery signals.
func WithRecoveryNotifier(n RecoveryNotifier) Option {
	return func(s *Service) {
		s.recovery = n
	}
}

func New(repos Repos, mail mailer.Sender, baseURL string, options ...Option) (*Service, error) {
	if repos.Accounts == nil {
		return nil, errors.New("[provision.New] Accounts repo is required")
	}
	if repos.Resets == nil {
		return nil, errors.New("[provision.New] Resets repo is required")
	}
	if repos.Roles == nil {
		return nil, errors.New("[provision.New] Roles repo is required")
	}
	if mail == nil {
		return nil, errors.New("[provision.New] mail sender is required")
	}

	s := &Service{
		repos:   repos,
		mail:    mail,
		baseURL: baseURL,
		nowTime: time.Now,
		log:     zerolog.Nop(),
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// CreateAccount provisions a platform account and its default role row.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (*Account, error) {
	if err := ValidatePasswordStrength(password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.CreateAccount] hash password")
	}

	account := &Account{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.nowTime(),
	}
	if err := s.repos.Accounts.Insert(ctx, account); err != nil {
		return nil, errors.Wrap(err, "[Service.CreateAccount] insert account")
	}

	if err := s.EnsureDefaultRole(ctx, account.ID); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", account.ID).Msg("account provisioned")
	return account, nil
}

// EnsureDefaultRole writes the default role row for a user unless one
// already exists. Idempotent; this is the only place a role row is created
// implicitly.
func (s *Service) EnsureDefaultRole(ctx context.Context, userID string) error {
	exists, err := s.repos.Roles.Exists(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "[Service.EnsureDefaultRole] existence check")
	}
	if exists {
		return nil
	}
	if err := s.repos.Roles.Insert(ctx, userID, DefaultRole); err != nil {
		return errors.Wrap(err, "[Service.EnsureDefaultRole] insert role")
	}
	return nil
}

// IssuePasswordReset creates a single-use reset token and mails the reset
// link. An unknown email is not an error, so the endpoint cannot be used to
// probe which addresses have accounts.
func (s *Service) IssuePasswordReset(ctx context.Context, email string) error {
	account, err := s.repos.Accounts.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrAccountNotFound) {
		s.log.Info().Msg("password reset requested for unknown address")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "[Service.IssuePasswordReset] get account")
	}

	raw := make([]byte, resetTokenLength)
	if _, err := rand.Read(raw); err != nil {
		return errors.Wrap(err, "[Service.IssuePasswordReset] rand.Read")
	}
	token := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(raw)

	if err := s.repos.Resets.Insert(ctx, &ResetToken{
		TokenHash: hashToken(token),
		AccountID: account.ID,
		ExpiresAt: s.nowTime().Add(resetTokenTTL),
	}); err != nil {
		return errors.Wrap(err, "[Service.IssuePasswordReset] insert token")
	}

	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\nReset link: %s/auth/reset-password?token=%s\n\nThe link expires in one hour.",
		s.baseURL, token,
	)
	if err := s.mail.Send(ctx, email, "Password reset", body); err != nil {
		return errors.Wrap(err, "[Service.IssuePasswordReset] send mail")
	}

	if s.recovery != nil {
		s.recovery.SignalPasswordRecovery(email)
	}

	s.log.Info().Str("user_id", account.ID).Msg("password reset issued")
	return nil
}

// ResetPassword consumes a reset token and sets the new password. The token
// is deleted whether or not it has expired.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	rt, err := s.repos.Resets.Get(ctx, hashToken(token))
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.ErrResetTokenInvalid
	}
	if err != nil {
		return errors.Wrap(err, "[Service.ResetPassword] get token")
	}

	defer func() {
		_ = s.repos.Resets.Delete(ctx, rt.TokenHash)
	}()

	if s.nowTime().After(rt.ExpiresAt) {
		return apperrors.ErrResetTokenExpired
	}

	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, "[Service.ResetPassword] hash password")
	}

	if err := s.repos.Accounts.UpdatePassword(ctx, rt.AccountID, hash); err != nil {
		return errors.Wrap(err, "[Service.ResetPassword] update password")
	}

	s.log.Info().Str("user_id", rt.AccountID).Msg("password reset completed")
	return nil
}

// CleanupExpiredResets removes reset tokens past their expiry. Run on a
// schedule.
func (s *Service) CleanupExpiredResets(ctx context.Context) error {
	n, err := s.repos.Resets.DeleteExpired(ctx, s.nowTime())
	if err != nil {
		return errors.Wrap(err, "[Service.CleanupExpiredResets] delete expired")
	}
	if n > 0 {
		s.log.Info().Int64("removed", n).Msg("expired reset tokens purged")
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.URLEncoding.EncodeToString(sum[:])
}
