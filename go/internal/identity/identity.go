// Package identity persists the local participant identity so a restarted
// client rejoins a room as the same participant.
package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrNoIdentity is returned by Load when nothing has been stored yet
var ErrNoIdentity = errors.New("no stored identity")

// Identity is the only state the client keeps across restarts.
type Identity struct {
	ParticipantID string `yaml:"participant_id" json:"participant_id"`
	Username      string `yaml:"username" json:"username"`
	SessionID     string `yaml:"session_id" json:"session_id"`
}

// Store loads and saves the identity record
type Store interface {
	Load() (Identity, error)
	Save(id Identity) error
	Clear() error
}

// NewSessionID builds a fresh session id for a username
func NewSessionID(username string) string {
	return fmt.Sprintf("%s-%s", username, uuid.New().String())
}

// FileStore keeps the identity in a YAML file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Identity{}, ErrNoIdentity
		}
		return Identity{}, fmt.Errorf("reading identity: %w", err)
	}

	var id Identity
	if err := yaml.Unmarshal(data, &id); err != nil {
		return Identity{}, fmt.Errorf("parsing identity: %w", err)
	}
	if id == (Identity{}) {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}

// Save overwrites the stored identity unconditionally.
func (s *FileStore) Save(id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating identity directory: %w", err)
	}

	data, err := yaml.Marshal(&id)
	if err != nil {
		return fmt.Errorf("marshaling identity: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing identity: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing identity: %w", err)
	}
	return nil
}

// MemoryStore keeps the identity in memory only
type MemoryStore struct {
	mu  sync.Mutex
	id  Identity
	set bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return Identity{}, ErrNoIdentity
	}
	return s.id, nil
}

func (s *MemoryStore) Save(id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	s.set = true
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = Identity{}
	s.set = false
	return nil
}
