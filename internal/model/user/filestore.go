package user

import (
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-json"
)

// document is the on-disk shape: the full account list plus the
// current-session pointer, one JSON object, no schema versioning.
type document struct {
	Users       []User `json:"users"`
	CurrentUser string `json:"currentUser,omitempty"`
}

// FileStore implements Store over a single JSON file. Every mutation
// rewrites the file; reads are served from memory.
type FileStore struct {
	mu   sync.RWMutex
	path string
	doc  document
}

// OpenFileStore loads the store from path, creating it with the seed admin
// when the file does not exist yet.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		s.doc.Users = []User{SeedAdmin()}
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("reading user store %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("decoding user store %s: %w", path, err)
	}
	if len(s.doc.Users) == 0 {
		s.doc.Users = []User{SeedAdmin()}
		if err := s.save(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// save writes the document; callers must hold the write lock (or be the
// only reference, as in OpenFileStore).
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding user store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing user store %s: %w", s.path, err)
	}
	return nil
}

// FindByCredentials matches an account by exact email and password.
func (s *FileStore) FindByCredentials(email, password string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.doc.Users {
		if u.Email == email && u.Password == password {
			return u, true
		}
	}
	return User{}, false
}

// FindByID looks up an account by identifier.
func (s *FileStore) FindByID(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.doc.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// Create appends a new account unless the email is taken. A failed write
// leaves the in-memory list unchanged.
func (s *FileStore) Create(u User) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.doc.Users {
		if existing.Email == u.Email {
			return User{}, false
		}
	}
	s.doc.Users = append(s.doc.Users, u)
	if err := s.save(); err != nil {
		s.doc.Users = s.doc.Users[:len(s.doc.Users)-1]
		return User{}, false
	}
	return u, true
}

// List returns a copy of all accounts in creation order.
func (s *FileStore) List() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]User(nil), s.doc.Users...)
}

// CurrentUserID returns the current-session pointer, empty when signed out.
func (s *FileStore) CurrentUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.CurrentUser
}

// SetCurrentUserID points the session at the given account.
func (s *FileStore) SetCurrentUserID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.CurrentUser = id
	return s.save()
}

// ClearCurrentUser signs the session out.
func (s *FileStore) ClearCurrentUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.CurrentUser = ""
	return s.save()
}
