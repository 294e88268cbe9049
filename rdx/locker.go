package rdx

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock taken over by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a booking.Locker shared by every process that talks to the same
// Redis. A lock expires after its lease even if its holder dies. The lease is
// TTL, stretched to outlast the deadline of the caller's context.
type Locker struct {
	Conn     redis.Cmdable
	TTL      time.Duration
	Retry    time.Duration
	NewToken func() string
}

func NewLocker(conn redis.Cmdable) *Locker {
	return &Locker{Conn: conn, TTL: 10 * time.Second, Retry: 25 * time.Millisecond, NewToken: uuid.NewString}
}

func lockKey(key string) string { return "lock:" + key }

// leaseFor returns a lease that ends after ctx does, rounded up to whole
// seconds.
func (l *Locker) leaseFor(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return l.TTL
	}
	lease := time.Until(deadline).Truncate(time.Second) + 2*time.Second
	return max(lease, l.TTL)
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	k := lockKey(key)
	token := l.NewToken()
	lease := l.leaseFor(ctx)
	for {
		ok, err := l.Conn.SetNX(ctx, k, token, lease).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.Retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			err := releaseScript.Run(rctx, l.Conn, []string{k}, token).Err()
			if err != nil && !errors.Is(err, redis.Nil) {
				log.Printf("[Redis] release %s: %v", k, err)
			}
		})
	}, nil
}
