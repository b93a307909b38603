package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverStatusCache prefers the primary (Redis) cache and falls back
// to the in-memory one when the primary errors. The primary is retried
// after a cooldown.
type FailoverStatusCache struct {
	primary   domain.StatusCache
	fallback  domain.StatusCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	downSince atomic.Int64
}

const recoveryCooldown = time.Minute

func NewFailoverStatusCache(primary, fallback domain.StatusCache, logger *zerolog.Logger) *FailoverStatusCache {
	return &FailoverStatusCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverStatusCache) primaryUsable() bool {
	if !r.isDown.Load() {
		return true
	}
	downSince := time.Unix(0, r.downSince.Load())
	if time.Since(downSince) > recoveryCooldown {
		r.isDown.Store(false)
		return true
	}
	return false
}

func (r *FailoverStatusCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary status cache failed, falling back to memory")
	r.isDown.Store(true)
	r.downSince.Store(time.Now().UnixNano())
}

func (r *FailoverStatusCache) GetStatus(ctx context.Context, userID int64) (string, bool, error) {
	if r.primaryUsable() {
		status, ok, err := r.primary.GetStatus(ctx, userID)
		if err == nil {
			return status, ok, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetStatus(ctx, userID)
}

func (r *FailoverStatusCache) SetStatus(ctx context.Context, userID int64, status string) error {
	if r.primaryUsable() {
		if err := r.primary.SetStatus(ctx, userID, status); err != nil {
			r.markDown(err)
		} else {
			return nil
		}
	}
	return r.fallback.SetStatus(ctx, userID, status)
}

func (r *FailoverStatusCache) Invalidate(ctx context.Context, userID int64) error {
	if r.primaryUsable() {
		if err := r.primary.Invalidate(ctx, userID); err != nil {
			r.markDown(err)
		}
	}
	// Always clear the fallback as well so a stale entry cannot surface
	// after a failover.
	return r.fallback.Invalidate(ctx, userID)
}

func (r *FailoverStatusCache) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.primaryUsable() {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}
