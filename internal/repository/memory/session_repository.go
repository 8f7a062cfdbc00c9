package memory

import (
	"time"

	"ai-research-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps active research sessions in process memory.
// Sessions idle past the TTL are evicted; finished sessions live in the
// database archive instead.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.ResearchSession) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.ResearchSession, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.ResearchSession), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
