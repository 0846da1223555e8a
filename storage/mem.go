package storage

import "sync"

// MemKV is an in-memory KV for tests and throwaway runs. SetErr, when
// non-nil, makes every Set fail with that error without touching the stored
// values (simulating a full substrate).
type MemKV struct {
	mu     sync.Mutex
	values map[string][]byte

	SetErr error
}

func NewMemKV() *MemKV {
	return &MemKV{values: make(map[string][]byte)}
}

func (s *MemKV) Get(name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.values[name]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemKV) Set(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	s.values[name] = stored
	return nil
}

func (s *MemKV) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, name)
	return nil
}
