package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/habitnest-api/internal/types"
)

// PrincipalStore looks up the principal a verified token names.
type PrincipalStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error)
}

// CachedPrincipalStore keeps recently resolved principals for a short TTL and
// collapses concurrent lookups of the same id into one store query. Misses and
// errors are never cached.
type CachedPrincipalStore struct {
	next  PrincipalStore
	cache *cache.Cache
	group singleflight.Group
}

var _ PrincipalStore = (*CachedPrincipalStore)(nil)

// NewCachedPrincipalStore wraps next. A non-positive ttl disables caching and
// returns next unchanged.
func NewCachedPrincipalStore(next PrincipalStore, ttl time.Duration) PrincipalStore {
	if ttl <= 0 {
		return next
	}
	return &CachedPrincipalStore{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *CachedPrincipalStore) GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error) {
	key := id.String()
	if v, ok := s.cache.Get(key); ok {
		u := v.(types.User)
		return &u, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// Shared by every waiter, so one caller's cancellation must not fail the rest.
		u, err := s.next.GetUserByID(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		s.cache.SetDefault(key, *u)
		return *u, nil
	})
	if err != nil {
		return nil, err
	}
	u := v.(types.User)
	return &u, nil
}

