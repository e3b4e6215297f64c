package memory

import (
	"sync"

	"github.com/meikuraledutech/flow"
)

// Store implements flow.Store in memory.
// Safe for concurrent use; edits to one flow are serialized.
type Store struct {
	mu    sync.RWMutex
	flows map[string]*entry
	opts  []flow.Option
}

type entry struct {
	mu      sync.Mutex
	session *flow.Session
}

// New creates an empty Store. opts are applied to every session it creates.
func New(opts ...flow.Option) *Store {
	return &Store{
		flows: make(map[string]*entry),
		opts:  opts,
	}
}

func (s *Store) lookup(flowID string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.flows[flowID]
	return e, ok
}
