// Package session owns the account state of one operator: the authenticated
// client, the snapshot cache and the mutation coordinator.
package session

import "github.com/playit-manager/playit-manager/internal/playit"

// Session is the single owner of the cache. Callers read through Cache and
// mutate through Mutations; nothing else writes the cache.
type Session struct {
	Client    *playit.Client
	Cache     *Cache
	Mutations *Coordinator
}

// New creates a session. client may be nil until a login succeeds.
func New(client *playit.Client, recorder Recorder) *Session {
	s := &Session{}
	s.Cache = NewCache(nil)
	s.Mutations = NewCoordinator(nil, s.Cache, recorder)
	if client != nil {
		s.Attach(client)
	}
	return s
}

// Attach installs a freshly authenticated client and invalidates the cache.
func (s *Session) Attach(client *playit.Client) {
	s.Client = client
	s.Cache.SetSource(client)
	s.Mutations.SetMutator(client)
}

// Authenticated reports whether a client is attached and the cache has not
// since seen a logged-out response.
func (s *Session) Authenticated() bool {
	return s.Client != nil && s.Cache.Authenticated()
}
