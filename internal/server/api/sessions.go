package api

import (
	"sync"

	"github.com/dmitrijs2005/medigenie/internal/client/services"
	"github.com/dmitrijs2005/medigenie/internal/common"
)

// maxSessions bounds the in-memory chat transcripts; the oldest is evicted.
const maxSessions = 32

type sessionStore struct {
	mu    sync.Mutex
	byID  map[string]*services.Session
	order []string
}

func newSessionStore() *sessionStore {
	return &sessionStore{byID: map[string]*services.Session{}}
}

func (s *sessionStore) add(sess *services.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) >= maxSessions {
		delete(s.byID, s.order[0])
		s.order = s.order[1:]
	}
	s.byID[sess.ID] = sess
	s.order = append(s.order, sess.ID)
}

func (s *sessionStore) get(id string) (*services.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return sess, nil
}
