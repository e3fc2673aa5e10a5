package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/household-ledger/pkg/logger"
	"github.com/nimasrn/household-ledger/pkg/redis"
)

var (
	ErrLockHeld          = errors.New("occurrence is being confirmed by another request")
	ErrLockAcquireFailed = errors.New("failed to acquire confirmation lock")
)

const DefaultTTL = 15 * time.Second

// Locker serializes confirmations of the same template occurrence across
// processes.
type Locker interface {
	Acquire(ctx context.Context, key string) (*Lease, error)
}

// Lease is a held lock. Release is safe to call more than once.
type Lease struct {
	key     string
	token   []byte
	release func(ctx context.Context, l *Lease) error
	held    bool
}

func (l *Lease) Release(ctx context.Context) error {
	if l == nil || !l.held {
		return nil
	}
	l.held = false
	return l.release(ctx, l)
}

// OccurrenceKey is the lock key of one template in one month.
func OccurrenceKey(templateID, month string) string {
	return fmt.Sprintf("confirm:%s:%s", templateID, month)
}

type RedisLocker struct {
	redis redis.RedisAdapter
	ttl   time.Duration
}

func NewRedisLocker(adapter redis.RedisAdapter, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLocker{
		redis: adapter,
		ttl:   ttl,
	}
}

// Acquire takes the lock for key or returns ErrLockHeld when another holder
// has it. The lock expires after the configured TTL if never released.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (*Lease, error) {
	token := []byte(uuid.NewString())
	acquired, err := l.redis.SetNX(ctx, key, token, l.ttl)
	if err != nil {
		logger.Error("[locker] failed to acquire lock", "key", key, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		logger.Info("[locker] lock already held", "key", key)
		return nil, ErrLockHeld
	}

	logger.Debug("[locker] lock acquired", "key", key, "ttl", l.ttl)
	return &Lease{key: key, token: token, release: l.release, held: true}, nil
}

// release deletes the key only while it still carries our token, so an
// expired lease never frees a lock taken over by someone else.
func (l *RedisLocker) release(ctx context.Context, lease *Lease) error {
	deleted, err := l.redis.CompareAndDelete(ctx, lease.key, lease.token)
	if err != nil {
		logger.Warn("[locker] failed to release lock", "key", lease.key, "error", err)
		return err
	}
	if !deleted {
		logger.Warn("[locker] lock expired before release", "key", lease.key)
	}
	return nil
}

// Noop grants every lock; used when no Redis is configured.
type Noop struct{}

func (Noop) Acquire(_ context.Context, key string) (*Lease, error) {
	return &Lease{key: key, release: func(context.Context, *Lease) error { return nil }, held: true}, nil
}
