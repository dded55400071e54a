package detect

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CacheEntry is the persisted detection record for one project root.
type CacheEntry struct {
	ProjectRoot string    `json:"project_root"`
	Framework   Framework `json:"framework"`
	Source      Source    `json:"source"`
	WrittenAt   time.Time `json:"written_at"`
}

// Store is the disk-backed detection cache collaborator. Entries are keyed by
// absolute project path and only invalidated by an explicit force flag.
type Store interface {
	Get(projectRoot string) (CacheEntry, bool)
	Set(projectRoot string, entry CacheEntry) error
	Invalidate(projectRoot string) error
}

const cacheFileName = "detection.json"

// FileStore persists detection results as a single JSON document. Writes are
// best-effort: callers treat persistence failures as non-fatal.
type FileStore struct {
	path  string
	mutex sync.Mutex
}

// NewFileStore creates a store rooted at dir. The directory is created lazily
// on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, cacheFileName)}
}

// Get returns the cached entry for projectRoot.
func (s *FileStore) Get(projectRoot string) (CacheEntry, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.load()
	if err != nil {
		return CacheEntry{}, false
	}
	entry, ok := entries[keyFor(projectRoot)]
	return entry, ok
}

// Set writes the entry for projectRoot, replacing any previous one.
func (s *FileStore) Set(projectRoot string, entry CacheEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.load()
	if err != nil {
		entries = make(map[string]CacheEntry)
	}
	entry.ProjectRoot = keyFor(projectRoot)
	entry.WrittenAt = time.Now()
	entries[entry.ProjectRoot] = entry
	return s.save(entries)
}

// Invalidate removes the entry for projectRoot. Missing entries are a no-op.
func (s *FileStore) Invalidate(projectRoot string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil
	}
	delete(entries, keyFor(projectRoot))
	return s.save(entries)
}

func (s *FileStore) load() (map[string]CacheEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return make(map[string]CacheEntry), err
	}
	entries := make(map[string]CacheEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt cache file is discarded, not an error.
		return make(map[string]CacheEntry), nil
	}
	return entries, nil
}

func (s *FileStore) save(entries map[string]CacheEntry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

func keyFor(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return filepath.Clean(projectRoot)
	}
	return abs
}
