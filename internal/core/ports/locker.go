package ports

import "context"

// UserLocker serializes allocation mutations per (organization, user) so the
// conflict check and the subsequent write observe a consistent snapshot. Lock
// blocks until the lock is acquired or ctx expires; the returned release
// function must be called exactly once.
type UserLocker interface {
	Lock(ctx context.Context, orgID, userID string) (release func(), err error)
}
