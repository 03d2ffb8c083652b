package api

import "sync"

// ActiveSessions remembers the session each user is currently practicing.
// Starting a new session replaces the previous one.
type ActiveSessions struct {
	mu       sync.Mutex
	sessions map[int64]int64
}

func NewActiveSessions() *ActiveSessions {
	return &ActiveSessions{sessions: make(map[int64]int64)}
}

func (a *ActiveSessions) Set(userID, sessionID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[userID] = sessionID
}

func (a *ActiveSessions) Get(userID int64) (int64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, ok := a.sessions[userID]
	return id, ok
}

// Clear forgets the user's session if it is still sessionID.
func (a *ActiveSessions) Clear(userID, sessionID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sessions[userID] == sessionID {
		delete(a.sessions, userID)
	}
}
