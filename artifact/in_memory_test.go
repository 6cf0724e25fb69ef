package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreRoundTrip(t *testing.T) {
	s := NewInMemoryStore()

	require.NoError(t, s.Save("b.txt", []byte("bee")))
	require.NoError(t, s.Save("a.txt", []byte("ay")))

	data, err := s.Get("b.txt")
	require.NoError(t, err)
	assert.Equal(t, "bee", string(data))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)

	require.NoError(t, s.Delete("a.txt"))
	_, err = s.Get("a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete("a.txt"), ErrNotFound)
}

func TestInMemoryStoreCopiesData(t *testing.T) {
	s := NewInMemoryStore()

	buf := []byte("original")
	require.NoError(t, s.Save("x", buf))
	buf[0] = 'X'

	data, err := s.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))

	data[0] = 'Y'
	again, err := s.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "original", string(again))
}
