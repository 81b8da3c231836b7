package memory

import (
	"time"

	"kisansetu-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultSessionTTL    = 1 * time.Hour
	defaultPurgeInterval = 10 * time.Minute
)

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	return NewSessionRepositoryWithTTL(DefaultSessionTTL, defaultPurgeInterval)
}

// NewSessionRepositoryWithTTL expires sessions that have not been read for ttl and
// closes their voice pipelines.
func NewSessionRepositoryWithTTL(ttl, purge time.Duration) *SessionRepository {
	c := cache.New(ttl, purge)
	c.OnEvicted(func(_ string, v interface{}) {
		if s, ok := v.(*store.Session); ok {
			s.Close()
		}
	})
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

// Get returns the session and extends its idle expiry.
func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		s := x.(*store.Session)
		r.cache.Set(sessionID, s, cache.DefaultExpiration)
		return s, true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
