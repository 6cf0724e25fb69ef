package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "default.jsonl")
	s := NewFileStore(path)

	records, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, s.Append(
		Record{Role: "user", Content: "hello"},
		Record{Role: "assistant", Content: "hi there"},
	))
	require.NoError(t, s.Append(Record{Role: "user", Content: "bye"}))

	records, err = s.Load()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Record{Role: "user", Content: "hello"}, records[0])
	assert.Equal(t, Record{Role: "assistant", Content: "hi there"}, records[1])
	assert.Equal(t, Record{Role: "user", Content: "bye"}, records[2])
}

func TestFileStoreSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.jsonl")
	raw := `{"role":"user","content":"first"}
not json at all
{"role":"assistant","content":"second"}

`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	s := NewFileStore(path)
	records, err := s.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].Content)
	assert.Equal(t, "second", records[1].Content)
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.jsonl")
	s := NewFileStore(path)

	require.NoError(t, s.Clear())

	require.NoError(t, s.Append(Record{Role: "user", Content: "hello"}))
	require.NoError(t, s.Clear())

	records, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestContents(t *testing.T) {
	contents := Contents([]Record{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	})
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "hello", contents[0].Text())
	assert.Equal(t, "assistant", contents[1].Role)
}

func TestInMemoryStore(t *testing.T) {
	s := NewInMemoryStore()

	require.NoError(t, s.Append(Record{Role: "user", Content: "a"}))
	require.NoError(t, s.Append(Record{Role: "assistant", Content: "b"}))

	records, err := s.Load()
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Load hands out a copy; mutating it must not leak back.
	records[0].Content = "mutated"
	fresh, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "a", fresh[0].Content)

	require.NoError(t, s.Clear())
	records, err = s.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}
