// Package session persists the REPL's chat history between runs. The Store
// interface keeps the facade independent of concrete storage; FileStore is
// the default JSONL backend, InMemoryStore serves tests.
package session

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/hupe1980/autocrew/core"
)

// Record is one persisted exchange line: a role ("user" or "assistant") and
// its text content.
type Record struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store loads and appends chat history.
type Store interface {
	// Load returns all persisted records in append order.
	Load() ([]Record, error)
	// Append persists records at the end of the history.
	Append(records ...Record) error
	// Clear removes all persisted history.
	Clear() error
}

// Contents converts records into model-ready conversation history.
func Contents(records []Record) []core.Content {
	out := make([]core.Content, 0, len(records))
	for _, r := range records {
		out = append(out, core.NewTextContent(r.Role, r.Content))
	}
	return out
}

// FileStore keeps history as JSON lines in a single file, created lazily on
// first append. Safe for concurrent use within one process; the file is not
// locked across processes.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore builds a store over the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the standard session file location,
// ~/.autocrew/sessions/default.jsonl.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".autocrew", "sessions", "default.jsonl"), nil
}

// Load reads all records. A missing file is an empty history, not an error.
// Unparseable lines are skipped so one corrupt entry does not brick the REPL.
func (s *FileStore) Load() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	return records, nil
}

// Append writes records as JSON lines, creating parent directories as needed.
func (s *FileStore) Append(records ...Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode session record: %w", err)
		}
		if _, err := f.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("write session record: %w", err)
		}
	}
	return nil
}

// Clear deletes the session file. A missing file is fine.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session file: %w", err)
	}
	return nil
}

// InMemoryStore is a volatile Store for tests and ephemeral sessions.
type InMemoryStore struct {
	mu      sync.Mutex
	records []Record
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Load returns a copy of the stored records.
func (s *InMemoryStore) Load() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Append adds records to the history.
func (s *InMemoryStore) Append(records ...Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

// Clear drops all records.
func (s *InMemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}
