package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/samber/do"
)

const DefaultTTL = time.Hour

// Store keeps states in memory until they have been idle for the ttl.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: cache.New(ttl, ttl/2), ttl: ttl}
}

func NewStoreFromInjector(i *do.Injector) (*Store, error) {
	return NewStore(do.MustInvokeNamed[time.Duration](i, "session_ttl")), nil
}

// Get returns the state for id, creating a fresh one under a new id when
// id is unknown or expired.
func (s *Store) Get(id string) *State {
	if id != "" {
		if v, ok := s.cache.Get(id); ok {
			state := v.(*State)
			s.cache.Set(id, state, s.ttl)
			return state
		}
	}

	state := New(uuid.NewString())
	s.cache.Set(state.ID, state, s.ttl)
	return state
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}

func (s *Store) Shutdown() error {
	s.cache.Flush()
	return nil
}
