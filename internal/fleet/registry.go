package fleet

import "sync"

// Registry is an in-memory Fleet implementation the host runtime feeds as
// players connect and disconnect.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session // player uuid -> session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

func (r *Registry) Register(sess Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.UUID()] = sess
}

func (r *Registry) Unregister(uuid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, uuid)
}

func (r *Registry) AllSessions() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		all = append(all, sess)
	}
	return all
}

// SessionFor returns the player's live session on this node, or nil when the
// player is connected elsewhere or not at all.
func (r *Registry) SessionFor(uuid string) Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[uuid]
	if !ok {
		return nil
	}
	return sess
}
