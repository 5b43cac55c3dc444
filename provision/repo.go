package provision

import (
	"context"
	"time"
)

type Account struct {
	ID           string    `json:"id,omitempty"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // never serialize
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// AccountRepo stores platform accounts. Insert returns ErrAccountExists when
// the email is already taken.
type AccountRepo interface {
	Insert(ctx context.Context, account *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	UpdatePassword(ctx context.Context, accountID, passwordHash string) error
}

// ResetToken is a single-use password-reset grant. Only the SHA-256 hash of
// the issued token is stored.
type ResetToken struct {
	TokenHash string
	AccountID string
	ExpiresAt time.Time
}

type ResetTokenRepo interface {
	Insert(ctx context.Context, token *ResetToken) error
	Get(ctx context.Context, tokenHash string) (*ResetToken, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
