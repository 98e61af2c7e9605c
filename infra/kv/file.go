package kv

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileStore keeps all keys in a single JSON document on disk. The whole
// document is rewritten on every Set; collections here are small.
type FileStore struct {
	path string
	mu   sync.Mutex
	data map[string]string
}

// NewFileStore loads the document at path, creating it on first use. A
// malformed document is discarded and replaced on the next write.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, data: make(map[string]string)}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("kv: read %s: %w", path, err)
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &s.data); err != nil {
			s.data = make(map[string]string)
		}
	}
	return s, nil
}

func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	b, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("kv: marshal: %w", err)
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (s *FileStore) Durable() bool { return true }

func (s *FileStore) Close() error { return nil }
