package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"roomstay/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverCoordinationStore uses primary until it fails, then serves from
// fallback and retries primary once per recoveryInterval.
type FailoverCoordinationStore struct {
	primary  domain.CoordinationStore
	fallback domain.CoordinationStore
	logger   *zerolog.Logger
	isDown   atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
	// lockOwner remembers which store granted each held lock token.
	lockOwner sync.Map
}

func NewFailoverCoordinationStore(primary, fallback domain.CoordinationStore, logger *zerolog.Logger) *FailoverCoordinationStore {
	return &FailoverCoordinationStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverCoordinationStore) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary coordination store failed, falling back to memory")
	r.isDown.Store(true)
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

// usePrimary reports whether the next call should go to primary.
func (r *FailoverCoordinationStore) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) > recoveryInterval {
		r.lastCheck = time.Now()
		return true
	}
	return false
}

func (r *FailoverCoordinationStore) recovered() {
	if r.isDown.CompareAndSwap(true, false) {
		r.logger.Info().Msg("Primary coordination store recovered")
	}
}

func (r *FailoverCoordinationStore) AcquireRoomLock(ctx context.Context, roomID int64, ttl time.Duration) (string, bool, error) {
	if r.usePrimary() {
		token, ok, err := r.primary.AcquireRoomLock(ctx, roomID, ttl)
		if err == nil {
			r.recovered()
			if ok {
				r.lockOwner.Store(token, r.primary)
			}
			return token, ok, nil
		}
		r.markDown(err)
	}

	token, ok, err := r.fallback.AcquireRoomLock(ctx, roomID, ttl)
	if err == nil && ok {
		r.lockOwner.Store(token, r.fallback)
	}
	return token, ok, err
}

func (r *FailoverCoordinationStore) ReleaseRoomLock(ctx context.Context, roomID int64, token string) error {
	owner, ok := r.lockOwner.LoadAndDelete(token)
	if !ok {
		return nil
	}
	store := owner.(domain.CoordinationStore)
	err := store.ReleaseRoomLock(ctx, roomID, token)
	if err != nil && store == r.primary {
		// the lock expires on its own after its ttl
		r.markDown(err)
		return nil
	}
	return err
}

func (r *FailoverCoordinationStore) CheckRateLimit(ctx context.Context, callerID int64, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, callerID, limit, window)
		if err == nil {
			r.recovered()
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, callerID, limit, window)
}
