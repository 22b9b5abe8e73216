package account

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cherrizbox/socialverify/internal/cache"
	"github.com/cherrizbox/socialverify/internal/observability/logger"
)

// CachedService memoizes account lookups for a short TTL. Accounts are
// read-only from this service's point of view, so a stale name/email for a
// minute is acceptable; a cache failure degrades to a direct lookup.
type CachedService struct {
	Inner Service
	Cache cache.Client
	TTL   time.Duration
}

// NewCached wraps inner with a lookup cache.
func NewCached(inner Service, c cache.Client, ttl time.Duration) *CachedService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedService{Inner: inner, Cache: c, TTL: ttl}
}

func (s *CachedService) Get(ctx context.Context, userID string) (*Account, error) {
	key := "account:" + userID
	if v, err := s.Cache.Get(ctx, key); err == nil {
		var a Account
		if json.Unmarshal([]byte(v), &a) == nil {
			return &a, nil
		}
	} else if !cache.IsNotFound(err) {
		logger.From(ctx).Warn("account cache get failed", logger.Err(err))
	}

	a, err := s.Inner.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(a); err == nil {
		if err := s.Cache.Set(ctx, key, string(b), s.TTL); err != nil {
			logger.From(ctx).Warn("account cache set failed", logger.Err(err))
		}
	}
	return a, nil
}
