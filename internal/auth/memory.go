package auth

import "sync"

// MemoryStore keeps the session in process memory. Tests use it in place
// of the keyring; Cleared counts sign-outs.
type MemoryStore struct {
	mu      sync.Mutex
	session *Session
	Cleared int
}

// NewMemoryStore starts signed in as s, or signed out when s is nil.
func NewMemoryStore(s *Session) *MemoryStore {
	m := &MemoryStore{}
	if s != nil {
		cp := *s
		m.session = &cp
	}
	return m
}

func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, ErrNoSession
	}
	cp := *m.session
	return &cp, nil
}

func (m *MemoryStore) Save(s *Session) error {
	if err := s.Validate(); err != nil {
		return err
	}
	cp := *s
	m.mu.Lock()
	m.session = &cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session, m.Cleared = nil, m.Cleared+1
	return nil
}
