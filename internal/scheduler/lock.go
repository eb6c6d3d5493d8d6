package scheduler

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	lockKeyPrefix  = "gymprogress::lock::"
	DefaultLockTTL = 5 * time.Minute
)

// deletes the key only if it still holds our token
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// RedisLock keeps a job from running on more than one instance at a time.
type RedisLock struct {
	redisClient *redis.Client
	ttl         time.Duration
	// NewToken is replaceable in tests
	NewToken func() string
}

func NewRedisLock(redisClient *redis.Client, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLock{
		redisClient: redisClient,
		ttl:         ttl,
		NewToken:    uuid.NewString,
	}
}

// Acquire tries to take the named lock once, without waiting. The lock
// expires after ttl even if release is never called, a non-positive ttl
// falls back to the one the lock was created with.
func (l *RedisLock) Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), acquired bool, err error) {
	if ttl <= 0 {
		ttl = l.ttl
	}
	key := lockKeyPrefix + name
	token := l.NewToken()

	acquired, err = l.redisClient.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !acquired {
		return func() {}, false, err
	}

	return func() {
		released, err := l.redisClient.Eval(context.Background(), releaseScript, []string{key}, token).Int64()
		if err != nil {
			log.Errorf("release lock %s: %s", key, err)
			return
		}
		if released == 0 {
			log.Warnf("lock %s expired before release, ttl %s too short for the job", key, ttl)
		}
	}, true, nil
}
