package rolecache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/immoflow/accessgate/roles"
)

var _ Cache = (*Redis)(nil)

// Redis is the shared cache implementation for multi-instance deployments.
// Each client instance owns one key, derived from the instanceKey passed at
// construction; the TTL is enforced by Redis itself.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedis(client *redis.Client, instanceKey string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{
		client: client,
		key:    "accessgate:role:" + instanceKey,
		ttl:    ttl,
	}
}

func (r *Redis) Put(ctx context.Context, role roles.Role) error {
	if role == roles.RoleNone {
		return r.Clear(ctx)
	}
	if err := r.client.Set(ctx, r.key, string(role), r.ttl).Err(); err != nil {
		return errors.Wrap(err, "[Redis.Put] set role")
	}
	return nil
}

func (r *Redis) Get(ctx context.Context) (roles.Role, bool, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return roles.RoleNone, false, nil
	}
	if err != nil {
		return roles.RoleNone, false, errors.Wrap(err, "[Redis.Get] get role")
	}
	return roles.Role(val), true, nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return errors.Wrap(err, "[Redis.Clear] del role")
	}
	return nil
}
