package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/immoflow/accessgate/roles"
)

var _ roles.Repo = (*RoleRepo)(nil)
var _ roles.ProviderMembershipRepo = (*ProviderMembershipRepo)(nil)

// RoleRepo reads and writes the user_roles relation.
type RoleRepo struct {
	pool *pgxpool.Pool
}

func NewRoleRepo(pool *pgxpool.Pool) *RoleRepo {
	return &RoleRepo{pool: pool}
}

// Get returns the first role row for a user. The relation may contain more
// than one row per user; the oldest row wins.
func (r *RoleRepo) Get(ctx context.Context, userID string) (roles.Role, error) {
	var role string
	err := r.pool.QueryRow(ctx,
		`SELECT role FROM user_roles WHERE user_id = $1 ORDER BY created_at LIMIT 1`,
		userID,
	).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return roles.RoleNone, nil
	}
	if err != nil {
		return roles.RoleNone, errors.Wrap(err, "[RoleRepo.Get] query user_roles")
	}
	return roles.Role(role), nil
}

func (r *RoleRepo) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1)`,
		userID,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "[RoleRepo.Exists] query user_roles")
	}
	return exists, nil
}

func (r *RoleRepo) Insert(ctx context.Context, userID string, role roles.Role) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role, created_at) VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, string(role),
	)
	if err != nil {
		return errors.Wrap(err, "[RoleRepo.Insert] insert user_roles")
	}
	return nil
}

func (r *RoleRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return errors.Wrap(err, "[RoleRepo.Delete] delete user_roles")
	}
	return nil
}

// ProviderMembershipRepo reads the provider_roles relation.
type ProviderMembershipRepo struct {
	pool *pgxpool.Pool
}

func NewProviderMembershipRepo(pool *pgxpool.Pool) *ProviderMembershipRepo {
	return &ProviderMembershipRepo{pool: pool}
}

func (r *ProviderMembershipRepo) IsProvider(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM provider_roles WHERE user_id = $1)`,
		userID,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "[ProviderMembershipRepo.IsProvider] query provider_roles")
	}
	return exists, nil
}
