package service

import (
	"context"
	"fmt"
	"time"

	"roomstay/internal/domain"
	"roomstay/internal/metrics"

	"github.com/rs/zerolog"
)

const lockRetryInterval = 20 * time.Millisecond

// roomLocks serializes booking writers of one room across replicas. The
// database transaction already closes the race inside one database; the lock
// keeps replicas from burning busy retries on the same room.
type roomLocks struct {
	locker domain.RoomLocker
	ttl    time.Duration
	wait   time.Duration
	logger *zerolog.Logger
}

func (l roomLocks) with(ctx context.Context, roomID int64, fn func() error) error {
	if l.locker == nil {
		return fn()
	}

	started := time.Now()
	deadline := started.Add(l.wait)
	for {
		token, ok, err := l.locker.AcquireRoomLock(ctx, roomID, l.ttl)
		if err != nil {
			l.logger.Warn().Err(err).Int64("room_id", roomID).Msg("Room lock unavailable, relying on database transaction")
			return fn()
		}
		if ok {
			metrics.ObserveLockWait(time.Since(started))
			defer func() {
				if err := l.locker.ReleaseRoomLock(context.WithoutCancel(ctx), roomID, token); err != nil {
					l.logger.Warn().Err(err).Int64("room_id", roomID).Msg("Failed to release room lock")
				}
			}()
			return fn()
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("room %d: %w", roomID, ErrRoomBusy)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}
