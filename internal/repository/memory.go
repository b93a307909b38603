package repository

import (
	"context"
	"sync"
	"time"
)

type MemoryStatusCache struct {
	statuses   sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

type statusEntry struct {
	status    string
	expiresAt time.Time
}

type rateLimitEntry struct {
	mu        sync.Mutex
	count     int
	expiresAt time.Time
}

func NewMemoryStatusCache(ttl time.Duration) *MemoryStatusCache {
	return &MemoryStatusCache{ttl: ttl}
}

func (r *MemoryStatusCache) GetStatus(ctx context.Context, userID int64) (string, bool, error) {
	val, ok := r.statuses.Load(userID)
	if !ok {
		return "", false, nil
	}
	entry := val.(statusEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.statuses.Delete(userID)
		return "", false, nil
	}
	return entry.status, true, nil
}

func (r *MemoryStatusCache) SetStatus(ctx context.Context, userID int64, status string) error {
	r.statuses.Store(userID, statusEntry{status: status, expiresAt: time.Now().Add(r.ttl)})
	return nil
}

func (r *MemoryStatusCache) Invalidate(ctx context.Context, userID int64) error {
	r.statuses.Delete(userID)
	return nil
}

func (r *MemoryStatusCache) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, _ := r.rateLimits.LoadOrStore(userID, &rateLimitEntry{})
	entry := val.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.expiresAt) {
		entry.count = 1
		entry.expiresAt = now.Add(window)
	} else {
		entry.count++
	}
	return entry.count <= limit, nil
}
