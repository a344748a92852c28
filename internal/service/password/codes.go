package password

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// codeStore keeps one live reset code per key together with a count of
// failed attempts against it.
type codeStore interface {
	Save(ctx context.Context, key, code string, ttl time.Duration) error
	// Load returns "" when no live code exists.
	Load(ctx context.Context, key string) (string, error)
	// Miss records a failed attempt and returns the total so far.
	Miss(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string) error
}

// redisCodes stores each code in a hash {code, attempts} that expires with
// the code.
type redisCodes struct {
	client *redis.Client
}

func (r *redisCodes) Save(ctx context.Context, key, code string, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, "code", code, "attempts", 0)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisCodes) Load(ctx context.Context, key string) (string, error) {
	code, err := r.client.HGet(ctx, key, "code").Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return code, err
}

func (r *redisCodes) Miss(ctx context.Context, key string) (int64, error) {
	return r.client.HIncrBy(ctx, key, "attempts", 1).Result()
}

func (r *redisCodes) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
