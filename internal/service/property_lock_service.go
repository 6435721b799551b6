package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrPropertyBusy is returned when the per-property lock cannot be
// acquired before the deadline. Safe for the caller to retry.
var ErrPropertyBusy = errors.New("property is locked by another booking operation")

// releaseLockScript deletes the lock only if it still holds our token,
// so an expired lock re-acquired by someone else is never released by us.
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	propertyLockKeyPrefix = "property:lock:"
	lockRetryInterval     = 50 * time.Millisecond
)

// PropertyLocker serializes booking writes per property. The conflict
// check and the insert/approve that follows it must run under the same
// lock, otherwise two racing requests can both pass the check.
type PropertyLocker interface {
	// Acquire blocks until the property lock is held or the context /
	// TTL budget runs out. The returned release func is idempotent.
	Acquire(ctx context.Context, propertyID uuid.UUID) (func(), error)
}

// RedisPropertyLock implements PropertyLocker with SET NX PX and a
// compare-and-delete release, giving mutual exclusion across instances.
type RedisPropertyLock struct {
	client *redis.Client
	log    *logrus.Logger
	ttl    time.Duration
}

func NewRedisPropertyLock(client *redis.Client, log *logrus.Logger, ttl time.Duration) *RedisPropertyLock {
	return &RedisPropertyLock{
		client: client,
		log:    log,
		ttl:    ttl,
	}
}

func (l *RedisPropertyLock) Acquire(ctx context.Context, propertyID uuid.UUID) (func(), error) {
	key := propertyLockKeyPrefix + propertyID.String()
	token := uuid.New().String()

	deadline := time.Now().Add(l.ttl)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrPropertyBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// Release on a fresh context: the request context may
			// already be cancelled and the lock must still be freed.
			relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseLockScript.Run(relCtx, l.client, []string{key}, token).Err(); err != nil {
				l.log.Warnf("Failed to release property lock %s: %+v", key, err)
			}
		})
	}
	return release, nil
}

// LocalPropertyLock is an in-process PropertyLocker for single-instance
// deployments and tests. Per-property mutexes live in a sync.Map.
type LocalPropertyLock struct {
	mu sync.Map // map[uuid.UUID]*sync.Mutex
}

func NewLocalPropertyLock() *LocalPropertyLock {
	return &LocalPropertyLock{}
}

func (l *LocalPropertyLock) Acquire(ctx context.Context, propertyID uuid.UUID) (func(), error) {
	v, _ := l.mu.LoadOrStore(propertyID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()

	var once sync.Once
	return func() {
		once.Do(m.Unlock)
	}, nil
}
