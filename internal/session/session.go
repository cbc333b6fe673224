package session

import (
	"errors"
	"sync"

	"inspectline/internal/domain"
)

var ErrNoUser = errors.New("no user signed in")

// Session holds the account the workflow acts on behalf of. How the user
// got signed in is not this package's concern.
type Session struct {
	mu   sync.RWMutex
	user *domain.User
}

func New(u domain.User) *Session {
	return &Session{user: &u}
}

func (s *Session) SignIn(u domain.User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

func (s *Session) SignOut() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// User returns the signed-in account.
func (s *Session) User() (domain.User, error) {
	if s == nil {
		return domain.User{}, ErrNoUser
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, ErrNoUser
	}
	return *s.user, nil
}

// UserID is the identifier recorded in audit fields such as inspectedBy.
func (s *Session) UserID() (string, error) {
	u, err := s.User()
	if err != nil {
		return "", err
	}
	return u.ID, nil
}
