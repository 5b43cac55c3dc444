package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	apperrors "github.com/immoflow/accessgate/internal/errors"
	"github.com/immoflow/accessgate/provision"
)

const uniqueViolation = "23505"

var _ provision.AccountRepo = (*AccountRepo)(nil)
var _ provision.ResetTokenRepo = (*ResetTokenRepo)(nil)

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Insert(ctx context.Context, account *provision.Account) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO accounts (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		account.ID, account.Email, account.PasswordHash, account.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperrors.ErrAccountExists
	}
	if err != nil {
		return errors.Wrap(err, "[AccountRepo.Insert] insert accounts")
	}
	return nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*provision.Account, error) {
	account := &provision.Account{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM accounts WHERE email = $1`,
		email,
	).Scan(&account.ID, &account.Email, &account.PasswordHash, &account.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[AccountRepo.GetByEmail] query accounts")
	}
	return account, nil
}

func (r *AccountRepo) UpdatePassword(ctx context.Context, accountID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $2 WHERE id = $1`,
		accountID, passwordHash,
	)
	if err != nil {
		return errors.Wrap(err, "[AccountRepo.UpdatePassword] update accounts")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

type ResetTokenRepo struct {
	pool *pgxpool.Pool
}

func NewResetTokenRepo(pool *pgxpool.Pool) *ResetTokenRepo {
	return &ResetTokenRepo{pool: pool}
}

func (r *ResetTokenRepo) Insert(ctx context.Context, token *provision.ResetToken) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO password_resets (token_hash, account_id, expires_at) VALUES ($1, $2, $3)`,
		token.TokenHash, token.AccountID, token.ExpiresAt,
	)
	if err != nil {
		return errors.Wrap(err, "[ResetTokenRepo.Insert] insert password_resets")
	}
	return nil
}

func (r *ResetTokenRepo) Get(ctx context.Context, tokenHash string) (*provision.ResetToken, error) {
	token := &provision.ResetToken{}
	err := r.pool.QueryRow(ctx,
		`SELECT token_hash, account_id, expires_at FROM password_resets WHERE token_hash = $1`,
		tokenHash,
	).Scan(&token.TokenHash, &token.AccountID, &token.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "[ResetTokenRepo.Get] query password_resets")
	}
	return token, nil
}

func (r *ResetTokenRepo) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM password_resets WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return errors.Wrap(err, "[ResetTokenRepo.Delete] delete password_resets")
	}
	return nil
}

func (r *ResetTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM password_resets WHERE expires_at < $1`, now)
	if err != nil {
		return 0, errors.Wrap(err, "[ResetTokenRepo.DeleteExpired] delete password_resets")
	}
	return tag.RowsAffected(), nil
}
