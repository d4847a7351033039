package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockTTL       = 10 * time.Second
	lockRetry     = 25 * time.Millisecond
	releaseWindow = 2 * time.Second
)

// releaseScript deletes the lock key only when the caller still owns it, so
// a lock that expired and was re-acquired elsewhere is never released by the
// previous holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// UserLock serializes allocation mutations per (organization, user) across
// API instances, keeping the conflict check and the following write atomic
// with respect to concurrent mutations for the same user.
// Key format: userlock:<organization_id>:<user_id>
type UserLock struct {
	client *redis.Client
}

// NewUserLock creates a UserLock wrapping the given Redis client.
func NewUserLock(client *redis.Client) *UserLock {
	return &UserLock{client: client}
}

// Lock blocks until the per-user lock is acquired or ctx expires. The TTL
// bounds how long a crashed holder can wedge the user's mutations.
func (l *UserLock) Lock(ctx context.Context, orgID, userID string) (func(), error) {
	key := l.key(orgID, userID)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire user lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetry):
		}
	}

	release := func() {
		// Detached context: the lock must be released even when the request
		// context has already been cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseWindow)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
	}
	return release, nil
}

func (l *UserLock) key(orgID, userID string) string {
	return fmt.Sprintf("userlock:%s:%s", orgID, userID)
}
