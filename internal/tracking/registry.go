package tracking

import (
	"errors"
	"sync"
	"time"

	"backend-rollpath/internal/engine"
)

var ErrSessionNotFound = errors.New("tracking session not found")

// liveSession is one in-flight journey. Its mutex serializes every sample,
// timer and lifecycle call into the controller, which is single-threaded by
// contract.
type liveSession struct {
	mu sync.Mutex

	id        string
	riderID   string
	preset    string
	startedAt time.Time

	ctrl   *engine.Controller
	events []engine.Event
}

type registry struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession
}

func newRegistry() *registry {
	return &registry{sessions: map[string]*liveSession{}}
}

func (r *registry) add(s *liveSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.id] = s
}

func (r *registry) get(id string) (*liveSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
