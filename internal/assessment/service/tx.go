package service

import (
	"context"
	"sync"
	"time"

	id "migratio/pkg/domain"
	dErrors "migratio/pkg/domain-errors"
)

// numUserShards spreads users over independent locks so unrelated users do
// not contend.
const numUserShards = 128

const defaultTxTimeout = 5 * time.Second

// userLocker serializes the read-modify-write cycle of one user's session
// within a process. Stores still check Session.Version, which covers
// concurrent writers in other processes.
type userLocker struct {
	shards  [numUserShards]sync.Mutex
	timeout time.Duration
}

func (l *userLocker) RunForUser(ctx context.Context, userID id.UserID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := l.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := hashString(userID.String()) % numUserShards
	l.shards[shard].Lock()
	defer l.shards[shard].Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}

// hashString is FNV-1a.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
