package service

import (
	"sync"

	id "onboard/pkg/domain"
)

// sessionLocks serializes turns per session. Concurrent continue calls
// on one session queue up; different sessions never contend. Entries
// are refcounted and removed when the last holder releases, so the map
// does not grow with session count.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[id.SessionID]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[id.SessionID]*sessionLock)}
}

// acquire blocks until the session's lock is held. The returned release
// must run on every exit path of the turn.
func (l *sessionLocks) acquire(sessionID id.SessionID) (release func()) {
	l.mu.Lock()
	lock, ok := l.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		l.locks[sessionID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}
