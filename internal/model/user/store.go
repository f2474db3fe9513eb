package user

import "sync"

// Store exposes the account list and the current-session pointer. It is the
// black-box collaborator the conversation core never depends on directly.
type Store interface {
	FindByCredentials(email, password string) (User, bool)
	FindByID(id string) (User, bool)
	// Create registers a new account; it reports false when the email is
	// already taken.
	Create(u User) (User, bool)
	List() []User

	CurrentUserID() string
	SetCurrentUserID(id string) error
	ClearCurrentUser() error
}

// MemoryStore implements Store with an in-memory slice, preloaded with the
// seed admin when opened empty.
type MemoryStore struct {
	mu      sync.RWMutex
	users   []User
	current string
}

// NewMemoryStore returns a MemoryStore holding the supplied users, seeding
// the admin account when the list is empty.
func NewMemoryStore(users []User) *MemoryStore {
	if len(users) == 0 {
		users = []User{SeedAdmin()}
	}
	return &MemoryStore{users: append([]User(nil), users...)}
}

// FindByCredentials matches an account by exact email and password.
func (s *MemoryStore) FindByCredentials(email, password string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email && u.Password == password {
			return u, true
		}
	}
	return User{}, false
}

// FindByID looks up an account by identifier.
func (s *MemoryStore) FindByID(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// Create appends a new account unless the email is taken.
func (s *MemoryStore) Create(u User) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return User{}, false
		}
	}
	s.users = append(s.users, u)
	return u, true
}

// List returns a copy of all accounts in creation order.
func (s *MemoryStore) List() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]User(nil), s.users...)
}

// CurrentUserID returns the current-session pointer, empty when signed out.
func (s *MemoryStore) CurrentUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetCurrentUserID points the session at the given account.
func (s *MemoryStore) SetCurrentUserID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = id
	return nil
}

// ClearCurrentUser signs the session out.
func (s *MemoryStore) ClearCurrentUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = ""
	return nil
}
