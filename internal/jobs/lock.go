package jobs

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"toolshed-backend/internal/logger"
)

// Locker grants exclusive runs of a named job across cronjob instances.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), acquired bool, err error)
}

const lockPrefix = "toolshed:job-lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another instance is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	key := lockPrefix + name
	token := uuid.NewString()

	logger.ExternalServiceCall("redis", "SetNX", "key", key, "ttl", ttl)
	acquired, err := l.client.SetNX(ctx, key, token, ttl).Result()
	logger.ExternalServiceResult("redis", "SetNX", err, "key", key, "acquired", acquired)
	if err != nil || !acquired {
		return nil, false, err
	}

	release := func() {
		if err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			logger.Warn("Failed to release job lock", "key", key, "error", err)
		}
	}
	return release, true, nil
}
