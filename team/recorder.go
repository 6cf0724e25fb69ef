package team

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hupe1980/autocrew/core"
)

// FileRecorder persists board messages as JSON lines, one object per append.
// The file doubles as a human-readable transcript of the run.
type FileRecorder struct {
	mu sync.Mutex
	f  *os.File
}

// fileRecord is the on-disk line layout.
type fileRecord struct {
	Timestamp time.Time `json:"ts"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Content   string    `json:"content"`
}

// NewFileRecorder opens (or creates) the transcript file for appending.
func NewFileRecorder(path string) (*FileRecorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transcript %s: %w", path, err)
	}
	return &FileRecorder{f: f}, nil
}

// Record appends one message as a JSON line.
func (r *FileRecorder) Record(msg core.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line, err := json.Marshal(fileRecord{
		Timestamp: msg.Timestamp,
		From:      msg.Sender,
		To:        msg.Recipient,
		Content:   msg.Body,
	})
	if err != nil {
		return fmt.Errorf("encode transcript line: %w", err)
	}
	if _, err := r.f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write transcript line: %w", err)
	}
	return nil
}

// Close flushes and closes the transcript file.
func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}
