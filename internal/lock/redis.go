package lock

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired holder cannot release a lock someone else has since taken.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis shares resource locks between app instances.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
}

func NewRedis(client redis.UniversalClient, ttl, wait time.Duration) *Redis {
	return &Redis{
		client: client,
		prefix: "lock:",
		ttl:    ttl,
		wait:   wait,
		poll:   20 * time.Millisecond,
	}
}

func (r *Redis) redisKey(key Key) string {
	return r.prefix + key.String()
}

func (r *Redis) Lock(ctx context.Context, key Key) (func(), error) {
	rkey := r.redisKey(key)
	token := uuid.NewString()
	deadline := time.Now().Add(r.wait)

	for {
		ok, err := r.client.SetNX(ctx, rkey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", rkey, err)
		}
		if ok {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, &domain.BusyError{Key: key.String()}
		}

		timer := time.NewTimer(r.poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return func() {
		// release with a fresh context: the request context may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, r.client, []string{rkey}, token).Err(); err != nil {
			log.Printf("release lock %s: %v", rkey, err)
		}
	}, nil
}

var _ Locker = (*Redis)(nil)
