package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryCoordinationStore is the single-process fallback of the Redis store.
type MemoryCoordinationStore struct {
	mu         sync.Mutex
	locks      map[int64]lockEntry
	rateLimits sync.Map
	now        func() time.Time
}

type lockEntry struct {
	token     string
	expiresAt time.Time
}

func NewMemoryCoordinationStore() *MemoryCoordinationStore {
	return &MemoryCoordinationStore{
		locks: make(map[int64]lockEntry),
		now:   time.Now,
	}
}

func (r *MemoryCoordinationStore) AcquireRoomLock(_ context.Context, roomID int64, ttl time.Duration) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if cur, ok := r.locks[roomID]; ok && now.Before(cur.expiresAt) {
		return "", false, nil
	}
	token := uuid.NewString()
	r.locks[roomID] = lockEntry{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (r *MemoryCoordinationStore) ReleaseRoomLock(_ context.Context, roomID int64, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.locks[roomID]; ok && cur.token == token {
		delete(r.locks, roomID)
	}
	return nil
}

type rateLimitEntry struct {
	mu        sync.Mutex
	count     int
	expiresAt time.Time
}

func (r *MemoryCoordinationStore) CheckRateLimit(_ context.Context, callerID int64, limit int, window time.Duration) (bool, error) {
	now := r.now()
	val, _ := r.rateLimits.LoadOrStore(callerID, &rateLimitEntry{})
	entry := val.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.count == 0 || !now.Before(entry.expiresAt) {
		entry.count = 1
		entry.expiresAt = now.Add(window)
	} else {
		entry.count++
	}
	return entry.count <= limit, nil
}
