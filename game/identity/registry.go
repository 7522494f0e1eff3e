// Package identity maps live connections to their chosen nicknames.
//
// An identity exists from the moment a connection sends CreateNickname until
// the connection drops. Nicknames are not validated and not unique; the
// registry is a plain lookup table keyed by connection ID.
package identity

import "sync"

// Registry is a thread-safe connection-to-nickname table.
type Registry struct {
	mu    sync.RWMutex
	nicks map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nicks: make(map[string]string),
	}
}

// Set stores or overwrites the nickname for a connection.
func (r *Registry) Set(connID, nick string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nicks[connID] = nick
}

// Lookup returns the nickname for a connection and whether one was set.
func (r *Registry) Lookup(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nick, ok := r.nicks[connID]
	return nick, ok
}

// Remove deletes the identity entry. Safe to call for an absent connection.
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.nicks, connID)
}

// Count returns the number of registered identities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nicks)
}
