package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStateStore is the single-process fallback used when Redis is not
// reachable. State survives only as long as the process does, which is
// acceptable for OAuth nonces.
type MemoryStateStore struct {
	cache *gocache.Cache
}

func NewMemoryStateStore() StateStore {
	return &MemoryStateStore{
		cache: gocache.New(10*time.Minute, 15*time.Minute),
	}
}

func (s *MemoryStateStore) SaveOAuthState(_ context.Context, state string, ttl time.Duration) error {
	s.cache.Set(oauthStatePrefix+state, struct{}{}, ttl)
	return nil
}

func (s *MemoryStateStore) ConsumeOAuthState(_ context.Context, state string) (bool, error) {
	key := oauthStatePrefix + state
	if _, found := s.cache.Get(key); !found {
		return false, nil
	}
	s.cache.Delete(key)
	return true, nil
}
