package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/noah-isme/edushare-client/internal/models"
)

// Backend persists the token+profile pair durably. Save and Clear operate on
// the pair as a single unit so readers can never observe a token without its
// profile or the reverse.
type Backend interface {
	Load() (*models.Session, error)
	Save(sess *models.Session) error
	Clear() error
}

// FileBackend stores the session as one JSON file, surviving process
// restarts. Writes go through a temp file and rename so a crash mid-write
// leaves either the old pair or the new one, never a torn record.
type FileBackend struct {
	path string
}

// NewFileBackend creates a backend rooted at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Load reads the persisted pair. A missing file means logged out and returns
// (nil, nil); a corrupt file returns an error for the caller to degrade on.
func (b *FileBackend) Load() (*models.Session, error) {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	if sess.Token == "" || sess.User.ID == "" {
		return nil, fmt.Errorf("incomplete session record")
	}
	return &sess, nil
}

// Save writes the pair atomically.
func (b *FileBackend) Save(sess *models.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close session file: %w", err)
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Clear removes the pair. Clearing an absent session is not an error.
func (b *FileBackend) Clear() error {
	if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// MemoryBackend keeps the pair in memory. Used by tests and as a fallback
// when no durable location is available.
type MemoryBackend struct {
	mu   sync.Mutex
	sess *models.Session
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Load() (*models.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sess == nil {
		return nil, nil
	}
	copied := *b.sess
	return &copied, nil
}

func (b *MemoryBackend) Save(sess *models.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	copied := *sess
	b.sess = &copied
	return nil
}

func (b *MemoryBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sess = nil
	return nil
}
