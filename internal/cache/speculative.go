package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

// Speculative applies an edit to the cached view before the write lands.
// On a failed write the previous cached value is restored; on success the
// entry is dropped so the next read loads the stored document.
type Speculative[T any] struct {
	cache Cache
	ttl   time.Duration
}

func NewSpeculative[T any](c Cache, ttl time.Duration) *Speculative[T] {
	return &Speculative[T]{cache: c, ttl: ttl}
}

func (s *Speculative[T]) Apply(
	ctx context.Context,
	key string,
	current T,
	mutate func(T) (T, error),
	commit func(context.Context, T) (T, error),
) (T, error) {
	var zero T

	snapshot, hadSnapshot, err := s.cache.Get(ctx, key)
	if err != nil {
		utils.Logger.WithError(err).Warnf("cache snapshot failed for %s", key)
		hadSnapshot = false
	}

	next, err := mutate(current)
	if err != nil {
		return zero, err
	}

	if raw, err := json.Marshal(next); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			utils.Logger.WithError(err).Warnf("speculative cache write failed for %s", key)
		}
	}

	result, err := commit(ctx, next)
	if err != nil {
		var rbErr error
		if hadSnapshot {
			rbErr = s.cache.Set(ctx, key, snapshot, s.ttl)
		} else {
			rbErr = s.cache.Delete(ctx, key)
		}
		if rbErr != nil {
			utils.Logger.WithError(rbErr).Errorf("cache rollback failed for %s", key)
		}
		return zero, err
	}

	if err := s.cache.Delete(ctx, key); err != nil {
		utils.Logger.WithError(err).Warnf("cache invalidation failed for %s", key)
	}
	return result, nil
}
