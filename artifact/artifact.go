// Package artifact stores the files a team run produces. A Store is scoped
// to one run; DirStore is the on-disk backend agents share through the run
// workspace, InMemoryStore serves tests.
package artifact

import "errors"

// ErrNotFound is returned when the named artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// Store is a flat namespace of named byte blobs. Names may contain slashes;
// backends treat them as relative paths.
type Store interface {
	// Save writes (or overwrites) the artifact.
	Save(name string, data []byte) error
	// Get returns the artifact bytes or ErrNotFound.
	Get(name string) ([]byte, error)
	// List returns all artifact names, sorted.
	List() ([]string, error)
	// Delete removes the artifact or returns ErrNotFound.
	Delete(name string) error
}
