package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirStoreRoundTrip(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save("haiku.txt", []byte("old pond")))
	require.NoError(t, s.Save("drafts/v1.txt", []byte("frog jumps in")))

	data, err := s.Get("haiku.txt")
	require.NoError(t, err)
	assert.Equal(t, "old pond", string(data))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"drafts/v1.txt", "haiku.txt"}, names)
}

func TestDirStoreGetMissing(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get("nope.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirStoreDelete(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save("a.txt", []byte("x")))
	require.NoError(t, s.Delete("a.txt"))
	assert.ErrorIs(t, s.Delete("a.txt"), ErrNotFound)

	names, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDirStoreRejectsEscapes(t *testing.T) {
	s, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../outside.txt", "..", "/etc/passwd", "a/../../b.txt"} {
		assert.Error(t, s.Save(name, []byte("x")), "name %q", name)
	}

	// Dotted segments that stay inside the root are fine.
	require.NoError(t, s.Save("a/../b.txt", []byte("x")))
	data, err := s.Get("b.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
